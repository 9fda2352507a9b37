package group

import "context"

// Repository persists groups and their members.
type Repository interface {
	// Create stores the group together with its first member.
	Create(ctx context.Context, g Group, owner Member) error
	AddMember(ctx context.Context, m Member) error
	GetByCode(ctx context.Context, code string) (Group, bool, error)
	GetMember(ctx context.Context, groupID, userID string) (Member, bool, error)
	// ListMembers returns members in join order.
	ListMembers(ctx context.Context, groupID string) ([]Member, error)
	Search(ctx context.Context, query string, limit int) ([]Group, error)
}
