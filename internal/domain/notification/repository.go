package notification

import "context"

type Repository interface {
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]Notification, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
