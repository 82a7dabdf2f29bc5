package domain

import "context"

// PrivilegedMemberChecker reports whether an actor holds elevated rights in
// a conversation. It is an injected platform capability; the core never
// implements membership itself.
type PrivilegedMemberChecker interface {
	IsPrivilegedMember(ctx context.Context, conversationID, actorID string) (bool, error)
}

// Authorizer decides whether an actor may administer an event: the event
// creator always may, anyone else only if the platform recognizes them as a
// privileged member of the owning conversation.
type Authorizer interface {
	IsEventAdmin(ctx context.Context, event *Event, actorID string) (bool, error)
}
