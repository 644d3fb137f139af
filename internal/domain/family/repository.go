package family

import (
	"context"

	"fambook-go/internal/domain/notification"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetFamily(ctx context.Context, familyID string) (*Family, error)
	GetFamilyByToken(ctx context.Context, token string) (*Family, error)
	CreateFamily(ctx context.Context, fam *Family) error
	HasFamilyWithName(ctx context.Context, creatorID, name string) (bool, error)
	IsTokenTaken(ctx context.Context, token string) (bool, error)

	GetMember(ctx context.Context, familyID, userID string) (*FamilyMember, error)
	GetMemberByID(ctx context.Context, memberID string) (*FamilyMember, error)
	AddMember(ctx context.Context, member *FamilyMember) error
	UpdateMemberStatus(ctx context.Context, memberID, status string) error
	ListApprovedMembers(ctx context.Context, familyID string, offset, limit int) ([]MemberProfile, error)
	ListPendingMembers(ctx context.Context, familyID string) ([]MemberProfile, error)
	ListAdminUserIDs(ctx context.Context, familyID string) ([]string, error)

	ListUserFamilies(ctx context.Context, userID string) ([]Summary, error)
	GetStats(ctx context.Context, familyID string) (Stats, error)

	CreateNotifications(ctx context.Context, rows []notification.Notification) error
}
