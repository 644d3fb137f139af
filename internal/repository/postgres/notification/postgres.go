package notification

import (
	"context"
	"errors"

	notifdomain "fambook-go/internal/domain/notification"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]notifdomain.Notification, error) {
	var rows []notifdomain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*notifdomain.Notification, error) {
	var row notifdomain.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notifdomain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *PostgresRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notifdomain.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&notifdomain.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&notifdomain.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error
}
