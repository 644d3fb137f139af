package family

import (
	"context"
	"errors"
	"testing"

	"fambook-go/internal/domain/notification"
)

type fakeFamilyRepo struct {
	families      map[string]*Family
	members       map[string]*FamilyMember
	notifications []notification.Notification
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{
		families: make(map[string]*Family),
		members:  make(map[string]*FamilyMember),
	}
}

func (r *fakeFamilyRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeFamilyRepo) GetFamily(ctx context.Context, familyID string) (*Family, error) {
	fam, ok := r.families[familyID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	return fam, nil
}

func (r *fakeFamilyRepo) GetFamilyByToken(ctx context.Context, token string) (*Family, error) {
	for _, fam := range r.families {
		if fam.JoinToken == token {
			return fam, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (r *fakeFamilyRepo) CreateFamily(ctx context.Context, fam *Family) error {
	r.families[fam.ID] = fam
	return nil
}

func (r *fakeFamilyRepo) HasFamilyWithName(ctx context.Context, creatorID, name string) (bool, error) {
	for _, fam := range r.families {
		if fam.CreatedByID == creatorID && fam.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFamilyRepo) IsTokenTaken(ctx context.Context, token string) (bool, error) {
	for _, fam := range r.families {
		if fam.JoinToken == token {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFamilyRepo) GetMember(ctx context.Context, familyID, userID string) (*FamilyMember, error) {
	for _, member := range r.members {
		if member.FamilyID == familyID && member.UserID == userID {
			return member, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *fakeFamilyRepo) GetMemberByID(ctx context.Context, memberID string) (*FamilyMember, error) {
	member, ok := r.members[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (r *fakeFamilyRepo) AddMember(ctx context.Context, member *FamilyMember) error {
	r.members[member.ID] = member
	return nil
}

func (r *fakeFamilyRepo) UpdateMemberStatus(ctx context.Context, memberID, status string) error {
	member, ok := r.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	member.Status = status
	return nil
}

func (r *fakeFamilyRepo) ListApprovedMembers(ctx context.Context, familyID string, offset, limit int) ([]MemberProfile, error) {
	profiles := make([]MemberProfile, 0)
	for _, member := range r.members {
		if member.FamilyID != familyID || member.Status != StatusApproved {
			continue
		}
		profiles = append(profiles, MemberProfile{
			MemberID: member.ID,
			UserID:   member.UserID,
			Role:     member.Role,
		})
	}
	return profiles, nil
}

func (r *fakeFamilyRepo) ListPendingMembers(ctx context.Context, familyID string) ([]MemberProfile, error) {
	profiles := make([]MemberProfile, 0)
	for _, member := range r.members {
		if member.FamilyID != familyID || member.Status != StatusPending {
			continue
		}
		profiles = append(profiles, MemberProfile{
			MemberID: member.ID,
			UserID:   member.UserID,
			Role:     member.Role,
		})
	}
	return profiles, nil
}

func (r *fakeFamilyRepo) ListAdminUserIDs(ctx context.Context, familyID string) ([]string, error) {
	ids := make([]string, 0)
	for _, member := range r.members {
		if member.FamilyID == familyID && member.Role == RoleAdmin && member.Status == StatusApproved {
			ids = append(ids, member.UserID)
		}
	}
	return ids, nil
}

func (r *fakeFamilyRepo) ListUserFamilies(ctx context.Context, userID string) ([]Summary, error) {
	summaries := make([]Summary, 0)
	for _, member := range r.members {
		if member.UserID != userID {
			continue
		}
		fam := r.families[member.FamilyID]
		summaries = append(summaries, Summary{
			ID:        fam.ID,
			Name:      fam.Name,
			JoinToken: fam.JoinToken,
			IsAdmin:   member.Role == RoleAdmin,
			Status:    member.Status,
		})
	}
	return summaries, nil
}

func (r *fakeFamilyRepo) GetStats(ctx context.Context, familyID string) (Stats, error) {
	var count int64
	for _, member := range r.members {
		if member.FamilyID == familyID && member.Status == StatusApproved {
			count++
		}
	}
	return Stats{MemberCount: count}, nil
}

func (r *fakeFamilyRepo) CreateNotifications(ctx context.Context, rows []notification.Notification) error {
	r.notifications = append(r.notifications, rows...)
	return nil
}

func (r *fakeFamilyRepo) notificationsFor(userID string) []notification.Notification {
	rows := make([]notification.Notification, 0)
	for _, row := range r.notifications {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	return rows
}

func seedFamily(repo *fakeFamilyRepo, familyID, creatorID, token string) {
	repo.families[familyID] = &Family{ID: familyID, Name: "Smith", JoinToken: token, CreatedByID: creatorID}
	repo.members["m-"+creatorID] = &FamilyMember{
		ID: "m-" + creatorID, FamilyID: familyID, UserID: creatorID,
		Role: RoleAdmin, Status: StatusApproved,
	}
}

func TestCreateFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewService(repo)

	fam, err := svc.Create(context.Background(), "user-1", "  Smith  ", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fam.Name != "Smith" {
		t.Fatalf("expected trimmed name, got %q", fam.Name)
	}
	if len(fam.JoinToken) != 8 {
		t.Fatalf("expected 8-char token, got %q", fam.JoinToken)
	}

	member, err := repo.GetMember(context.Background(), fam.ID, "user-1")
	if err != nil {
		t.Fatalf("expected creator membership, got %v", err)
	}
	if member.Role != RoleAdmin || member.Status != StatusApproved {
		t.Fatalf("expected approved admin, got %s/%s", member.Role, member.Status)
	}
	if len(repo.notificationsFor("user-1")) != 1 {
		t.Fatalf("expected creation notification")
	}
}

func TestCreateFamilyNameTooShort(t *testing.T) {
	svc := NewService(newFakeFamilyRepo())
	if _, err := svc.Create(context.Background(), "user-1", "A", nil); err == nil {
		t.Fatalf("expected error for short name")
	}
}

func TestCreateFamilyDuplicateName(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "user-1", "aaaa1111")

	svc := NewService(repo)
	_, err := svc.Create(context.Background(), "user-1", "Smith", nil)
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestJoinCreatesPendingRequest(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")

	svc := NewService(repo)
	fam, err := svc.Join(context.Background(), "user-2", "Bob", "ABCD1234")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fam.ID != "fam-1" {
		t.Fatalf("expected fam-1, got %s", fam.ID)
	}

	member, err := repo.GetMember(context.Background(), "fam-1", "user-2")
	if err != nil {
		t.Fatalf("expected pending membership, got %v", err)
	}
	if member.Status != StatusPending || member.Role != RoleMember {
		t.Fatalf("expected pending member, got %s/%s", member.Role, member.Status)
	}
	if len(repo.notificationsFor("user-2")) != 1 {
		t.Fatalf("expected requester notification")
	}
	if len(repo.notificationsFor("creator")) != 1 {
		t.Fatalf("expected admin notification")
	}
}

func TestJoinTwiceRejected(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")

	svc := NewService(repo)
	if _, err := svc.Join(context.Background(), "user-2", "Bob", "abcd1234"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	_, err := svc.Join(context.Background(), "user-2", "Bob", "abcd1234")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestJoinUnknownToken(t *testing.T) {
	svc := NewService(newFakeFamilyRepo())
	_, err := svc.Join(context.Background(), "user-2", "Bob", "nope0000")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestApproveRequest(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")
	repo.members["m-2"] = &FamilyMember{ID: "m-2", FamilyID: "fam-1", UserID: "user-2", Role: RoleMember, Status: StatusPending}

	svc := NewService(repo)
	if err := svc.Approve(context.Background(), "creator", "fam-1", "m-2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.members["m-2"].Status != StatusApproved {
		t.Fatalf("expected approved, got %s", repo.members["m-2"].Status)
	}
	if len(repo.notificationsFor("user-2")) != 1 {
		t.Fatalf("expected approval notification")
	}
}

func TestPendingRequestsAdminOnly(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")
	repo.members["m-2"] = &FamilyMember{ID: "m-2", FamilyID: "fam-1", UserID: "user-2", Role: RoleMember, Status: StatusApproved}
	repo.members["m-3"] = &FamilyMember{ID: "m-3", FamilyID: "fam-1", UserID: "user-3", Role: RoleMember, Status: StatusPending}

	svc := NewService(repo)
	if _, err := svc.PendingRequests(context.Background(), "user-2", "fam-1"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin for plain member, got %v", err)
	}

	requests, err := svc.PendingRequests(context.Background(), "creator", "fam-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(requests) != 1 || requests[0].MemberID != "m-3" {
		t.Fatalf("expected m-3 pending, got %+v", requests)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")
	repo.members["m-2"] = &FamilyMember{ID: "m-2", FamilyID: "fam-1", UserID: "user-2", Role: RoleMember, Status: StatusApproved}
	repo.members["m-3"] = &FamilyMember{ID: "m-3", FamilyID: "fam-1", UserID: "user-3", Role: RoleMember, Status: StatusPending}

	svc := NewService(repo)
	err := svc.Approve(context.Background(), "user-2", "fam-1", "m-3")
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestRejectNonPendingRequest(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")
	repo.members["m-2"] = &FamilyMember{ID: "m-2", FamilyID: "fam-1", UserID: "user-2", Role: RoleMember, Status: StatusApproved}

	svc := NewService(repo)
	err := svc.Reject(context.Background(), "creator", "fam-1", "m-2")
	if !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
}

func TestListMineHidesTokenFromNonAdmins(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")
	repo.members["m-2"] = &FamilyMember{ID: "m-2", FamilyID: "fam-1", UserID: "user-2", Role: RoleMember, Status: StatusApproved}

	svc := NewService(repo)
	summaries, err := svc.ListMine(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one family, got %d", len(summaries))
	}
	if summaries[0].JoinToken != "" {
		t.Fatalf("expected token hidden for member, got %q", summaries[0].JoinToken)
	}

	adminSummaries, err := svc.ListMine(context.Background(), "creator")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if adminSummaries[0].JoinToken != "abcd1234" {
		t.Fatalf("expected token visible for admin, got %q", adminSummaries[0].JoinToken)
	}
}

func TestRequireMemberRejectsPending(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "fam-1", "creator", "abcd1234")
	repo.members["m-2"] = &FamilyMember{ID: "m-2", FamilyID: "fam-1", UserID: "user-2", Role: RoleMember, Status: StatusPending}

	svc := NewService(repo)
	if _, err := svc.RequireMember(context.Background(), "user-2", "fam-1"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember for pending, got %v", err)
	}
	if _, err := svc.RequireMember(context.Background(), "stranger", "fam-1"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember for stranger, got %v", err)
	}
}

func TestRequireAdminCreatorOverride(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Smith", JoinToken: "abcd1234", CreatedByID: "creator"}

	svc := NewService(repo)
	member, err := svc.RequireAdmin(context.Background(), "creator", "fam-1")
	if err != nil {
		t.Fatalf("expected creator to pass without a row, got %v", err)
	}
	if member.Role != RoleAdmin {
		t.Fatalf("expected synthetic admin, got %s", member.Role)
	}
}
