package user

import (
	"context"
	"errors"
	"time"

	domain "fambook-go/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertByExternalID(ctx context.Context, u *domain.User) (*domain.User, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if u.Email != "" {
		updates["email"] = u.Email
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(u).Error
	if err != nil {
		return nil, err
	}

	var stored domain.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", u.ExternalID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *PostgresRepository) SharesApprovedFamily(ctx context.Context, userID, otherID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("family_members AS a").
		Joins("join family_members AS b on b.family_id = a.family_id").
		Where("a.user_id = ? AND a.status = ?", userID, "APPROVED").
		Where("b.user_id = ? AND b.status = ?", otherID, "APPROVED").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ListEducation(ctx context.Context, userID string) ([]domain.Education, error) {
	var entries []domain.Education
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresRepository) GetEducation(ctx context.Context, id string) (*domain.Education, error) {
	var entry domain.Education
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEducationNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresRepository) CreateEducation(ctx context.Context, entry *domain.Education) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresRepository) UpdateEducation(ctx context.Context, entry *domain.Education) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *PostgresRepository) DeleteEducation(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Education{}, "id = ?", id).Error
}

func (r *PostgresRepository) ListWorkHistory(ctx context.Context, userID string) ([]domain.WorkHistory, error) {
	var entries []domain.WorkHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresRepository) GetWorkHistory(ctx context.Context, id string) (*domain.WorkHistory, error) {
	var entry domain.WorkHistory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWorkHistoryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresRepository) CreateWorkHistory(ctx context.Context, entry *domain.WorkHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresRepository) UpdateWorkHistory(ctx context.Context, entry *domain.WorkHistory) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *PostgresRepository) DeleteWorkHistory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.WorkHistory{}, "id = ?", id).Error
}
