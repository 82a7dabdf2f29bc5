package services

import (
	"context"
	"fmt"

	"chatvote/internal/domain"
)

type authorizer struct {
	members domain.PrivilegedMemberChecker
}

// NewAuthorizer returns the canonical admin resolver: the event creator is
// always an admin, everyone else only if the platform reports them as a
// privileged member of the owning conversation.
func NewAuthorizer(members domain.PrivilegedMemberChecker) domain.Authorizer {
	return &authorizer{
		members: members,
	}
}

func (a *authorizer) IsEventAdmin(ctx context.Context, event *domain.Event, actorID string) (bool, error) {
	if actorID == event.CreatedBy {
		return true, nil
	}
	privileged, err := a.members.IsPrivilegedMember(ctx, event.ConversationID, actorID)
	if err != nil {
		return false, fmt.Errorf("check privileged member: %w", err)
	}
	return privileged, nil
}
