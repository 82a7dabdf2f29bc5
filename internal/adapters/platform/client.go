package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"chatvote/internal/domain"
)

// memberStatus is the platform's description of an actor's standing in a
// conversation.
type memberStatus struct {
	Status string `json:"status"`
}

type membershipClient struct {
	baseURL string
	client  *http.Client
}

// NewMembershipClient returns a PrivilegedMemberChecker backed by the chat
// platform's membership API.
func NewMembershipClient(baseURL string, client *http.Client) domain.PrivilegedMemberChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &membershipClient{baseURL: baseURL, client: client}
}

func (c *membershipClient) IsPrivilegedMember(ctx context.Context, conversationID, actorID string) (bool, error) {
	u := fmt.Sprintf("%s/conversations/%s/members/%s",
		c.baseURL, url.PathEscape(conversationID), url.PathEscape(actorID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to fetch membership: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("membership api returned status: %d", resp.StatusCode)
	}

	var member memberStatus
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return false, fmt.Errorf("failed to decode membership response: %w", err)
	}
	return member.Status == "administrator" || member.Status == "creator", nil
}
