package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users       map[string]*User
	byExternal  map[string]*User
	educations  map[string]*Education
	workEntries map[string]*WorkHistory
	coFamily    map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[string]*User),
		byExternal:  make(map[string]*User),
		educations:  make(map[string]*Education),
		workEntries: make(map[string]*WorkHistory),
		coFamily:    make(map[string]bool),
	}
}

func (r *fakeUserRepo) UpsertByExternalID(ctx context.Context, u *User) (*User, error) {
	if existing, ok := r.byExternal[u.ExternalID]; ok {
		existing.Email = u.Email
		return existing, nil
	}
	r.users[u.ID] = u
	r.byExternal[u.ExternalID] = u
	return u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, u *User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) SharesApprovedFamily(ctx context.Context, userID, otherID string) (bool, error) {
	return r.coFamily[userID+"|"+otherID] || r.coFamily[otherID+"|"+userID], nil
}

func (r *fakeUserRepo) ListEducation(ctx context.Context, userID string) ([]Education, error) {
	result := make([]Education, 0)
	for _, entry := range r.educations {
		if entry.UserID == userID {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) GetEducation(ctx context.Context, id string) (*Education, error) {
	entry, ok := r.educations[id]
	if !ok {
		return nil, ErrEducationNotFound
	}
	return entry, nil
}

func (r *fakeUserRepo) CreateEducation(ctx context.Context, entry *Education) error {
	r.educations[entry.ID] = entry
	return nil
}

func (r *fakeUserRepo) UpdateEducation(ctx context.Context, entry *Education) error {
	r.educations[entry.ID] = entry
	return nil
}

func (r *fakeUserRepo) DeleteEducation(ctx context.Context, id string) error {
	delete(r.educations, id)
	return nil
}

func (r *fakeUserRepo) ListWorkHistory(ctx context.Context, userID string) ([]WorkHistory, error) {
	result := make([]WorkHistory, 0)
	for _, entry := range r.workEntries {
		if entry.UserID == userID {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) GetWorkHistory(ctx context.Context, id string) (*WorkHistory, error) {
	entry, ok := r.workEntries[id]
	if !ok {
		return nil, ErrWorkHistoryNotFound
	}
	return entry, nil
}

func (r *fakeUserRepo) CreateWorkHistory(ctx context.Context, entry *WorkHistory) error {
	r.workEntries[entry.ID] = entry
	return nil
}

func (r *fakeUserRepo) UpdateWorkHistory(ctx context.Context, entry *WorkHistory) error {
	r.workEntries[entry.ID] = entry
	return nil
}

func (r *fakeUserRepo) DeleteWorkHistory(ctx context.Context, id string) error {
	delete(r.workEntries, id)
	return nil
}

func seedUser(repo *fakeUserRepo, id string) *User {
	bio := "gardener"
	place := "Lisbon"
	u := &User{
		ID:         id,
		ExternalID: "ext-" + id,
		Email:      id + "@example.com",
		FullName:   "User " + id,
		Bio:        &bio,
		BirthPlace: &place,
		Languages:  StringList{"pt", "en"},
		Interests:  StringList{"chess"},
	}
	repo.users[id] = u
	repo.byExternal[u.ExternalID] = u
	return u
}

func TestSyncUserCreatesOnFirstSight(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	u, err := svc.SyncUser(context.Background(), Principal{ExternalID: "ext-1", Email: "a@example.com", Name: "  Ana  "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.FullName)
	assert.NotEmpty(t, u.ID)

	again, err := svc.SyncUser(context.Background(), Principal{ExternalID: "ext-1", Email: "a@example.com", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func TestSyncUserFallsBackToEmailName(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	u, err := svc.SyncUser(context.Background(), Principal{ExternalID: "ext-2", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", u.FullName)
}

func TestSyncUserRequiresExternalID(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	_, err := svc.SyncUser(context.Background(), Principal{Email: "x@example.com"})
	assert.Error(t, err)
}

func TestGetProfileOwnerSeesEverything(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	profile, err := svc.GetProfile(context.Background(), "u1", "u1")
	require.NoError(t, err)
	assert.True(t, profile.IsOwner)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "u1@example.com", *profile.Email)
	assert.NotNil(t, profile.Bio)
	assert.Len(t, profile.VisibleTabs, 4)
}

func TestGetProfileDefaultsToFamilyVisibility(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")
	seedUser(repo, "u2")
	seedUser(repo, "u3")
	repo.coFamily["u2|u1"] = true

	// Unset fields resolve to family: a co-family viewer sees them.
	familyView, err := svc.GetProfile(context.Background(), "u2", "u1")
	require.NoError(t, err)
	assert.False(t, familyView.IsOwner)
	assert.NotNil(t, familyView.Email)
	assert.NotNil(t, familyView.Bio)

	// A stranger sees only the always-public identity fields.
	publicView, err := svc.GetProfile(context.Background(), "u3", "u1")
	require.NoError(t, err)
	assert.Nil(t, publicView.Email)
	assert.Nil(t, publicView.Bio)
	assert.Empty(t, publicView.Languages)
	assert.Equal(t, "User u1", publicView.FullName)
}

func TestGetProfileHonorsExplicitSettings(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	target := seedUser(repo, "u1")
	seedUser(repo, "u2")
	seedUser(repo, "u3")
	repo.coFamily["u2|u1"] = true
	target.Privacy.Fields = map[string]Visibility{
		FieldBio:   VisibilityPublic,
		FieldEmail: VisibilityPrivate,
	}

	familyView, err := svc.GetProfile(context.Background(), "u2", "u1")
	require.NoError(t, err)
	assert.Nil(t, familyView.Email, "private hides from family too")
	assert.NotNil(t, familyView.Bio)

	publicView, err := svc.GetProfile(context.Background(), "u3", "u1")
	require.NoError(t, err)
	assert.NotNil(t, publicView.Bio, "public field visible to strangers")
	assert.Nil(t, publicView.Email)
}

func TestGetProfileHiddenTabsDroppedForOthers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	target := seedUser(repo, "u1")
	seedUser(repo, "u2")
	target.Privacy.Tabs = map[string]bool{TabWorkHistory: false}

	profile, err := svc.GetProfile(context.Background(), "u2", "u1")
	require.NoError(t, err)
	assert.NotContains(t, profile.VisibleTabs, TabWorkHistory)

	own, err := svc.GetProfile(context.Background(), "u1", "u1")
	require.NoError(t, err)
	assert.Contains(t, own.VisibleTabs, TabWorkHistory, "owner always sees hidden tabs")
}

func TestUpdateBasicInfoOwnerOnly(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	name := "New Name"
	_, err := svc.UpdateBasicInfo(context.Background(), "u2", "u1", BasicInfoUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	updated, err := svc.UpdateBasicInfo(context.Background(), "u1", "u1", BasicInfoUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.NotNil(t, updated.Bio, "untouched fields survive")
}

func TestUpdatePrivacyRejectsUnknownFieldAndValue(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	_, err := svc.UpdatePrivacy(context.Background(), "u1", "u1", map[string]string{"shoeSize": "public"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = svc.UpdatePrivacy(context.Background(), "u1", "u1", map[string]string{FieldBio: "friends"})
	assert.ErrorIs(t, err, ErrInvalidVisibility)

	updated, err := svc.UpdatePrivacy(context.Background(), "u1", "u1", map[string]string{FieldBio: "private"})
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, updated.Privacy.Fields[FieldBio])
}

func TestUpdateTabVisibilityRejectsUnknownTab(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	_, err := svc.UpdateTabVisibility(context.Background(), "u1", "u1", map[string]bool{"secrets": false})
	assert.ErrorIs(t, err, ErrUnknownTab)

	updated, err := svc.UpdateTabVisibility(context.Background(), "u1", "u1", map[string]bool{TabInterests: false})
	require.NoError(t, err)
	assert.False(t, updated.Privacy.Tabs[TabInterests])
}

func TestUpdateInterestsDedupes(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	updated, err := svc.UpdateInterests(context.Background(), "u1", "u1", []string{" Chess ", "chess", "", "Hiking"})
	require.NoError(t, err)
	assert.Equal(t, StringList{"Chess", "Hiking"}, updated.Interests)
}

func TestUpdatePictureClearsOnEmpty(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	updated, err := svc.UpdatePicture(context.Background(), "u1", "u1", "https://cdn.test/me.jpg")
	require.NoError(t, err)
	require.NotNil(t, updated.ProfilePictureURL)

	updated, err = svc.UpdatePicture(context.Background(), "u1", "u1", "   ")
	require.NoError(t, err)
	assert.Nil(t, updated.ProfilePictureURL)
}

func TestEducationLifecycle(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")
	start := time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC)

	entry, err := svc.AddEducation(context.Background(), "u1", "u1", Education{School: "Lisbon U", StartDate: start})
	require.NoError(t, err)
	assert.Equal(t, "u1", entry.UserID)

	_, err = svc.UpdateEducation(context.Background(), "u2", entry.ID, Education{School: "Other"})
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	badEnd := start.AddDate(-1, 0, 0)
	_, err = svc.UpdateEducation(context.Background(), "u1", entry.ID, Education{EndDate: &badEnd})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	err = svc.DeleteEducation(context.Background(), "u1", entry.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.educations)
}

func TestAddEducationRequiresStartDate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")

	_, err := svc.AddEducation(context.Background(), "u1", "u1", Education{School: "Lisbon U"})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestListEducationRespectsHiddenTab(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	target := seedUser(repo, "u1")
	seedUser(repo, "u2")
	target.Privacy.Tabs = map[string]bool{TabEducation: false}

	_, err := svc.ListEducation(context.Background(), "u2", "u1")
	assert.ErrorIs(t, err, ErrTabHidden)

	_, err = svc.ListEducation(context.Background(), "u1", "u1")
	assert.NoError(t, err, "owner bypasses tab privacy")
}

func TestWorkHistoryOwnerChecks(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	seedUser(repo, "u1")
	start := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

	entry, err := svc.AddWorkHistory(context.Background(), "u1", "u1", WorkHistory{Company: "Acme", Title: "Engineer", StartDate: start})
	require.NoError(t, err)

	err = svc.DeleteWorkHistory(context.Background(), "u2", entry.ID)
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	updated, err := svc.UpdateWorkHistory(context.Background(), "u1", entry.ID, WorkHistory{Title: "Staff Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", updated.Title)
	assert.Equal(t, "Acme", updated.Company)
}
