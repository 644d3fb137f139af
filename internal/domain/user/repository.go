package user

import "context"

type Repository interface {
	UpsertByExternalID(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error

	// SharesApprovedFamily reports whether two users are both approved
	// members of at least one common family.
	SharesApprovedFamily(ctx context.Context, userID, otherID string) (bool, error)

	ListEducation(ctx context.Context, userID string) ([]Education, error)
	GetEducation(ctx context.Context, id string) (*Education, error)
	CreateEducation(ctx context.Context, entry *Education) error
	UpdateEducation(ctx context.Context, entry *Education) error
	DeleteEducation(ctx context.Context, id string) error

	ListWorkHistory(ctx context.Context, userID string) ([]WorkHistory, error)
	GetWorkHistory(ctx context.Context, id string) (*WorkHistory, error)
	CreateWorkHistory(ctx context.Context, entry *WorkHistory) error
	UpdateWorkHistory(ctx context.Context, entry *WorkHistory) error
	DeleteWorkHistory(ctx context.Context, id string) error
}
