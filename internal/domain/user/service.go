package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SyncUser resolves an external principal to the internal user record,
// creating it on first sight. Called on every authenticated request.
func (s *Service) SyncUser(ctx context.Context, principal Principal) (*User, error) {
	if principal.ExternalID == "" {
		return nil, fmt.Errorf("external id is required")
	}

	record := User{
		ID:         uuid.NewString(),
		ExternalID: principal.ExternalID,
		Email:      principal.Email,
		FullName:   strings.TrimSpace(principal.Name),
	}
	if record.FullName == "" {
		record.FullName = principal.Email
	}
	if principal.AvatarURL != "" {
		avatar := principal.AvatarURL
		record.ProfilePictureURL = &avatar
	}

	return s.repo.UpsertByExternalID(ctx, &record)
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile returns the target user's profile as the viewer is allowed to
// see it: owners see everything, approved co-family members see public and
// family fields, everyone else sees public fields only.
func (s *Service) GetProfile(ctx context.Context, viewerID, targetID string) (Profile, error) {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return Profile{}, err
	}

	viewer, err := s.classifyViewer(ctx, viewerID, targetID)
	if err != nil {
		return Profile{}, err
	}

	return buildProfile(target, viewer), nil
}

func (s *Service) UpdateBasicInfo(ctx context.Context, actorID, targetID string, update BasicInfoUpdate) (*User, error) {
	target, err := s.requireOwner(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return nil, fmt.Errorf("full name cannot be empty")
		}
		target.FullName = name
	}
	if update.Bio != nil {
		target.Bio = update.Bio
	}
	if update.BirthPlace != nil {
		target.BirthPlace = update.BirthPlace
	}
	if update.CurrentPlace != nil {
		target.CurrentPlace = update.CurrentPlace
	}
	if update.RelationshipStatus != nil {
		target.RelationshipStatus = update.RelationshipStatus
	}
	if update.Languages != nil {
		target.Languages = StringList(*update.Languages)
	}

	if err := s.repo.UpdateUser(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) UpdatePrivacy(ctx context.Context, actorID, targetID string, fields map[string]string) (*User, error) {
	target, err := s.requireOwner(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if target.Privacy.Fields == nil {
		target.Privacy.Fields = make(map[string]Visibility, len(fields))
	}
	for field, value := range fields {
		if !isProfileField(field) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		visibility := Visibility(value)
		switch visibility {
		case VisibilityPublic, VisibilityFamily, VisibilityPrivate:
			target.Privacy.Fields[field] = visibility
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidVisibility, value)
		}
	}

	if err := s.repo.UpdateUser(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) UpdateTabVisibility(ctx context.Context, actorID, targetID string, tabs map[string]bool) (*User, error) {
	target, err := s.requireOwner(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if target.Privacy.Tabs == nil {
		target.Privacy.Tabs = make(map[string]bool, len(tabs))
	}
	for tab, visible := range tabs {
		if !isProfileTab(tab) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
		}
		target.Privacy.Tabs[tab] = visible
	}

	if err := s.repo.UpdateUser(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) UpdatePicture(ctx context.Context, actorID, targetID, pictureURL string) (*User, error) {
	target, err := s.requireOwner(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	pictureURL = strings.TrimSpace(pictureURL)
	if pictureURL == "" {
		target.ProfilePictureURL = nil
	} else {
		target.ProfilePictureURL = &pictureURL
	}

	if err := s.repo.UpdateUser(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) UpdateInterests(ctx context.Context, actorID, targetID string, interests []string) (*User, error) {
	target, err := s.requireOwner(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(interests))
	seen := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		interest = strings.TrimSpace(interest)
		if interest == "" {
			continue
		}
		key := strings.ToLower(interest)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, interest)
	}
	target.Interests = StringList(cleaned)

	if err := s.repo.UpdateUser(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) ListEducation(ctx context.Context, viewerID, targetID string) ([]Education, error) {
	if err := s.requireTabAccess(ctx, viewerID, targetID, TabEducation); err != nil {
		return nil, err
	}
	return s.repo.ListEducation(ctx, targetID)
}

func (s *Service) AddEducation(ctx context.Context, actorID, targetID string, entry Education) (*Education, error) {
	if _, err := s.requireOwner(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if err := validateDateRange(entry.StartDate, entry.EndDate); err != nil {
		return nil, err
	}

	entry.ID = uuid.NewString()
	entry.UserID = targetID
	if err := s.repo.CreateEducation(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) UpdateEducation(ctx context.Context, actorID, entryID string, update Education) (*Education, error) {
	existing, err := s.repo.GetEducation(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, ErrNotProfileOwner
	}

	if update.School != "" {
		existing.School = update.School
	}
	existing.Degree = update.Degree
	existing.Field = update.Field
	if !update.StartDate.IsZero() {
		existing.StartDate = update.StartDate
	}
	existing.EndDate = update.EndDate
	if err := validateDateRange(existing.StartDate, existing.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEducation(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) DeleteEducation(ctx context.Context, actorID, entryID string) error {
	existing, err := s.repo.GetEducation(ctx, entryID)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrNotProfileOwner
	}
	return s.repo.DeleteEducation(ctx, entryID)
}

func (s *Service) ListWorkHistory(ctx context.Context, viewerID, targetID string) ([]WorkHistory, error) {
	if err := s.requireTabAccess(ctx, viewerID, targetID, TabWorkHistory); err != nil {
		return nil, err
	}
	return s.repo.ListWorkHistory(ctx, targetID)
}

func (s *Service) AddWorkHistory(ctx context.Context, actorID, targetID string, entry WorkHistory) (*WorkHistory, error) {
	if _, err := s.requireOwner(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if err := validateDateRange(entry.StartDate, entry.EndDate); err != nil {
		return nil, err
	}

	entry.ID = uuid.NewString()
	entry.UserID = targetID
	if err := s.repo.CreateWorkHistory(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) UpdateWorkHistory(ctx context.Context, actorID, entryID string, update WorkHistory) (*WorkHistory, error) {
	existing, err := s.repo.GetWorkHistory(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, ErrNotProfileOwner
	}

	if update.Company != "" {
		existing.Company = update.Company
	}
	if update.Title != "" {
		existing.Title = update.Title
	}
	existing.Location = update.Location
	if !update.StartDate.IsZero() {
		existing.StartDate = update.StartDate
	}
	existing.EndDate = update.EndDate
	if err := validateDateRange(existing.StartDate, existing.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWorkHistory(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) DeleteWorkHistory(ctx context.Context, actorID, entryID string) error {
	existing, err := s.repo.GetWorkHistory(ctx, entryID)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrNotProfileOwner
	}
	return s.repo.DeleteWorkHistory(ctx, entryID)
}

func (s *Service) requireOwner(ctx context.Context, actorID, targetID string) (*User, error) {
	if actorID != targetID {
		return nil, ErrNotProfileOwner
	}
	return s.repo.GetByID(ctx, targetID)
}

func (s *Service) requireTabAccess(ctx context.Context, viewerID, targetID, tab string) error {
	if viewerID == targetID {
		return nil
	}
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.Privacy.TabVisible(tab) {
		return ErrTabHidden
	}
	return nil
}

func (s *Service) classifyViewer(ctx context.Context, viewerID, targetID string) (ViewerClass, error) {
	if viewerID == targetID {
		return ViewerSelf, nil
	}
	shared, err := s.repo.SharesApprovedFamily(ctx, viewerID, targetID)
	if err != nil {
		return ViewerPublic, err
	}
	if shared {
		return ViewerFamily, nil
	}
	return ViewerPublic, nil
}

func validateDateRange(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidDateRange)
	}
	if end != nil && end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}
