package family

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"fambook-go/internal/domain/notification"
	"github.com/google/uuid"
)

const (
	joinTokenBytes    = 4
	joinTokenAttempts = 10

	NameMinLength        = 2
	NameMaxLength        = 50
	DescriptionMaxLength = 500
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID, name string, description *string) (*Family, error) {
	name = strings.TrimSpace(name)
	if len(name) < NameMinLength || len(name) > NameMaxLength {
		return nil, fmt.Errorf("name must be %d-%d characters", NameMinLength, NameMaxLength)
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if len(trimmed) > DescriptionMaxLength {
			return nil, fmt.Errorf("description must be at most %d characters", DescriptionMaxLength)
		}
		if trimmed == "" {
			description = nil
		} else {
			description = &trimmed
		}
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.HasFamilyWithName(ctx, userID, name)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		token, err := generateUniqueToken(ctx, tx)
		if err != nil {
			return err
		}

		fam := Family{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
			JoinToken:   token,
			CreatedByID: userID,
		}
		if err := tx.CreateFamily(ctx, &fam); err != nil {
			return err
		}

		member := FamilyMember{
			ID:       uuid.NewString(),
			FamilyID: fam.ID,
			UserID:   userID,
			Role:     RoleAdmin,
			Status:   StatusApproved,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		if err := tx.CreateNotifications(ctx, []notification.Notification{
			notification.FamilyCreated(userID, fam.Name),
		}); err != nil {
			return err
		}

		result = fam
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Join files a pending membership request against the family matching the
// token and notifies the requester plus every family admin.
func (s *Service) Join(ctx context.Context, userID, userName, token string) (*Family, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		fam, err := tx.GetFamilyByToken(ctx, token)
		if err != nil {
			return err
		}

		_, err = tx.GetMember(ctx, fam.ID, userID)
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		member := FamilyMember{
			ID:       uuid.NewString(),
			FamilyID: fam.ID,
			UserID:   userID,
			Role:     RoleMember,
			Status:   StatusPending,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		adminIDs, err := tx.ListAdminUserIDs(ctx, fam.ID)
		if err != nil {
			return err
		}

		rows := make([]notification.Notification, 0, len(adminIDs)+1)
		rows = append(rows, notification.JoinRequestSent(userID, fam.Name))
		for _, adminID := range adminIDs {
			if adminID == userID {
				continue
			}
			rows = append(rows, notification.JoinRequestReceived(adminID, userName, fam.Name))
		}
		if err := tx.CreateNotifications(ctx, rows); err != nil {
			return err
		}

		result = *fam
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ListMine returns the caller's families, approved or pending, with computed
// member counts. The join token and pending-request count are only exposed to
// admins.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Summary, error) {
	summaries, err := s.repo.ListUserFamilies(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if !summaries[i].IsAdmin {
			summaries[i].JoinToken = ""
			summaries[i].PendingRequestsCount = 0
		}
	}
	return summaries, nil
}

func (s *Service) Get(ctx context.Context, userID, familyID string) (*Family, *FamilyMember, error) {
	fam, err := s.repo.GetFamily(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	member, err := s.RequireMember(ctx, userID, familyID)
	if err != nil {
		return nil, nil, err
	}
	return fam, member, nil
}

func (s *Service) ListMembers(ctx context.Context, userID, familyID string, page, limit int) ([]MemberProfile, error) {
	if _, err := s.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListApprovedMembers(ctx, familyID, (page-1)*limit, limit)
}

// ApprovedMembers is the ungated variant used by sibling domains that have
// already authorized the caller.
func (s *Service) ApprovedMembers(ctx context.Context, familyID string) ([]MemberProfile, error) {
	return s.repo.ListApprovedMembers(ctx, familyID, 0, 0)
}

// PendingRequests lists open join requests so an admin can approve or reject
// them by member id.
func (s *Service) PendingRequests(ctx context.Context, actorID, familyID string) ([]MemberProfile, error) {
	if _, err := s.RequireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}
	return s.repo.ListPendingMembers(ctx, familyID)
}

func (s *Service) GetStats(ctx context.Context, userID, familyID string) (Stats, error) {
	if _, err := s.RequireMember(ctx, userID, familyID); err != nil {
		return Stats{}, err
	}
	return s.repo.GetStats(ctx, familyID)
}

func (s *Service) Approve(ctx context.Context, actorID, familyID, memberID string) error {
	return s.resolveRequest(ctx, actorID, familyID, memberID, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, actorID, familyID, memberID string) error {
	return s.resolveRequest(ctx, actorID, familyID, memberID, StatusRejected)
}

func (s *Service) resolveRequest(ctx context.Context, actorID, familyID, memberID, status string) error {
	if _, err := s.RequireAdmin(ctx, actorID, familyID); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member.FamilyID != familyID {
			return ErrMemberNotFound
		}
		if member.Status != StatusPending {
			return ErrRequestNotPending
		}

		if err := tx.UpdateMemberStatus(ctx, memberID, status); err != nil {
			return err
		}

		fam, err := tx.GetFamily(ctx, familyID)
		if err != nil {
			return err
		}

		var row notification.Notification
		if status == StatusApproved {
			row = notification.RequestApproved(member.UserID, fam.Name)
		} else {
			row = notification.RequestRejected(member.UserID, fam.Name)
		}
		return tx.CreateNotifications(ctx, []notification.Notification{row})
	})
}

// MemberByID looks up a membership row directly, for domains that reference
// members by id (the family tree's node links).
func (s *Service) MemberByID(ctx context.Context, memberID string) (*FamilyMember, error) {
	return s.repo.GetMemberByID(ctx, memberID)
}

// RequireMember is the membership gate every family-scoped mutation goes
// through: only an APPROVED membership row passes.
func (s *Service) RequireMember(ctx context.Context, userID, familyID string) (*FamilyMember, error) {
	member, err := s.repo.GetMember(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	if member.Status != StatusApproved {
		return nil, ErrNotMember
	}
	return member, nil
}

// RequireAdmin passes for approved members holding the ADMIN role. The family
// creator always counts as admin, whatever the role field says.
func (s *Service) RequireAdmin(ctx context.Context, userID, familyID string) (*FamilyMember, error) {
	fam, err := s.repo.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.GetMember(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) && fam.CreatedByID == userID {
			return &FamilyMember{FamilyID: familyID, UserID: userID, Role: RoleAdmin, Status: StatusApproved}, nil
		}
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotAdmin
		}
		return nil, err
	}

	if fam.CreatedByID == userID {
		return member, nil
	}
	if member.Status != StatusApproved || member.Role != RoleAdmin {
		return nil, ErrNotAdmin
	}
	return member, nil
}

// RequireCreator gates the few operations reserved for the founding admin.
func (s *Service) RequireCreator(ctx context.Context, userID, familyID string) error {
	fam, err := s.repo.GetFamily(ctx, familyID)
	if err != nil {
		return err
	}
	if fam.CreatedByID != userID {
		return ErrNotAdmin
	}
	return nil
}

func generateUniqueToken(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < joinTokenAttempts; i++ {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		taken, err := repo.IsTokenTaken(ctx, token)
		if err != nil {
			return "", err
		}
		if !taken {
			return token, nil
		}
	}
	return "", ErrTokenGenerationFailed
}

func generateToken() (string, error) {
	buf := make([]byte, joinTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
