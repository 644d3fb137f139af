package family

import (
	"context"
	"errors"
	"time"

	familydomain "fambook-go/internal/domain/family"
	notifdomain "fambook-go/internal/domain/notification"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetFamily(ctx context.Context, familyID string) (*familydomain.Family, error) {
	var fam familydomain.Family
	if err := r.db.WithContext(ctx).Where("id = ?", familyID).First(&fam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrFamilyNotFound
		}
		return nil, err
	}
	return &fam, nil
}

func (r *PostgresRepository) GetFamilyByToken(ctx context.Context, token string) (*familydomain.Family, error) {
	var fam familydomain.Family
	if err := r.db.WithContext(ctx).Where("join_token = ?", token).First(&fam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrTokenNotFound
		}
		return nil, err
	}
	return &fam, nil
}

func (r *PostgresRepository) CreateFamily(ctx context.Context, fam *familydomain.Family) error {
	return r.db.WithContext(ctx).Create(fam).Error
}

func (r *PostgresRepository) HasFamilyWithName(ctx context.Context, creatorID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&familydomain.Family{}).
		Where("created_by_id = ? AND name = ?", creatorID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) IsTokenTaken(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&familydomain.Family{}).
		Where("join_token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, familyID, userID string) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) GetMemberByID(ctx context.Context, memberID string) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	if err := r.db.WithContext(ctx).Where("id = ?", memberID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *familydomain.FamilyMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) UpdateMemberStatus(ctx context.Context, memberID, status string) error {
	return r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).
		Where("id = ?", memberID).
		Update("status", status).Error
}

// ListApprovedMembers orders admins before members, then by join time.
// limit <= 0 disables pagination.
func (r *PostgresRepository) ListApprovedMembers(ctx context.Context, familyID string, offset, limit int) ([]familydomain.MemberProfile, error) {
	return r.listMembersByStatus(ctx, familyID, familydomain.StatusApproved, offset, limit)
}

func (r *PostgresRepository) ListPendingMembers(ctx context.Context, familyID string) ([]familydomain.MemberProfile, error) {
	return r.listMembersByStatus(ctx, familyID, familydomain.StatusPending, 0, 0)
}

func (r *PostgresRepository) listMembersByStatus(ctx context.Context, familyID, status string, offset, limit int) ([]familydomain.MemberProfile, error) {
	query := r.db.WithContext(ctx).
		Table("family_members").
		Select("family_members.id AS member_id, family_members.user_id, family_members.role, family_members.joined_at, users.full_name, users.email, users.profile_picture_url AS avatar_url").
		Joins("left join users on users.id = family_members.user_id").
		Where("family_members.family_id = ? AND family_members.status = ?", familyID, status).
		Order("CASE family_members.role WHEN 'ADMIN' THEN 0 ELSE 1 END, family_members.joined_at asc")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	type memberRow struct {
		MemberID  string
		UserID    string
		Role      string
		JoinedAt  time.Time
		FullName  *string
		Email     *string
		AvatarURL *string
	}

	var rows []memberRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]familydomain.MemberProfile, 0, len(rows))
	for _, row := range rows {
		profile := familydomain.MemberProfile{
			MemberID:  row.MemberID,
			UserID:    row.UserID,
			Role:      row.Role,
			JoinedAt:  row.JoinedAt,
			Email:     row.Email,
			AvatarURL: row.AvatarURL,
		}
		if row.FullName != nil {
			profile.FullName = *row.FullName
		}
		members = append(members, profile)
	}
	return members, nil
}

func (r *PostgresRepository) ListAdminUserIDs(ctx context.Context, familyID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&familydomain.FamilyMember{}).
		Where("family_id = ? AND status = ? AND role = ?", familyID, familydomain.StatusApproved, familydomain.RoleAdmin).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresRepository) ListUserFamilies(ctx context.Context, userID string) ([]familydomain.Summary, error) {
	var memberships []familydomain.FamilyMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{familydomain.StatusApproved, familydomain.StatusPending}).
		Order("joined_at asc").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]familydomain.Summary, 0, len(memberships))
	for _, membership := range memberships {
		fam, err := r.GetFamily(ctx, membership.FamilyID)
		if err != nil {
			return nil, err
		}

		var memberCount, pendingCount int64
		if err := r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).
			Where("family_id = ? AND status = ?", fam.ID, familydomain.StatusApproved).
			Count(&memberCount).Error; err != nil {
			return nil, err
		}
		if err := r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).
			Where("family_id = ? AND status = ?", fam.ID, familydomain.StatusPending).
			Count(&pendingCount).Error; err != nil {
			return nil, err
		}

		isAdmin := fam.CreatedByID == userID ||
			(membership.Status == familydomain.StatusApproved && membership.Role == familydomain.RoleAdmin)

		summaries = append(summaries, familydomain.Summary{
			ID:                   fam.ID,
			Name:                 fam.Name,
			Description:          fam.Description,
			JoinToken:            fam.JoinToken,
			CreatedByID:          fam.CreatedByID,
			CreatedAt:            fam.CreatedAt,
			MemberCount:          memberCount,
			IsAdmin:              isAdmin,
			Status:               membership.Status,
			PendingRequestsCount: pendingCount,
		})
	}
	return summaries, nil
}

func (r *PostgresRepository) GetStats(ctx context.Context, familyID string) (familydomain.Stats, error) {
	var stats familydomain.Stats

	if err := r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).
		Where("family_id = ? AND status = ?", familyID, familydomain.StatusApproved).
		Count(&stats.MemberCount).Error; err != nil {
		return stats, err
	}
	if err := r.db.WithContext(ctx).Table("posts").
		Where("family_id = ?", familyID).
		Count(&stats.PostCount).Error; err != nil {
		return stats, err
	}
	if err := r.db.WithContext(ctx).Table("albums").
		Where("family_id = ?", familyID).
		Count(&stats.AlbumCount).Error; err != nil {
		return stats, err
	}

	var rootCount int64
	if err := r.db.WithContext(ctx).Table("family_roots").
		Where("family_id = ?", familyID).
		Count(&rootCount).Error; err != nil {
		return stats, err
	}
	stats.HasRoot = rootCount > 0

	return stats, nil
}

func (r *PostgresRepository) CreateNotifications(ctx context.Context, rows []notifdomain.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
