package roots

import (
	"context"
	"errors"
	"testing"

	familydomain "fambook-go/internal/domain/family"
)

type fakeRootsRepo struct {
	roots     map[string]*FamilyRoot
	nodes     map[string]*RootNode
	relations map[string]*RootRelation
}

func newFakeRootsRepo() *fakeRootsRepo {
	return &fakeRootsRepo{
		roots:     make(map[string]*FamilyRoot),
		nodes:     make(map[string]*RootNode),
		relations: make(map[string]*RootRelation),
	}
}

func (r *fakeRootsRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeRootsRepo) GetRoot(ctx context.Context, rootID string) (*FamilyRoot, error) {
	root, ok := r.roots[rootID]
	if !ok {
		return nil, ErrRootNotFound
	}
	return root, nil
}

func (r *fakeRootsRepo) ListRootsByFamily(ctx context.Context, familyID string) ([]FamilyRoot, error) {
	result := make([]FamilyRoot, 0)
	for _, root := range r.roots {
		if root.FamilyID == familyID {
			result = append(result, *root)
		}
	}
	return result, nil
}

func (r *fakeRootsRepo) FamilyHasRoot(ctx context.Context, familyID string) (bool, error) {
	for _, root := range r.roots {
		if root.FamilyID == familyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRootsRepo) CreateRoot(ctx context.Context, root *FamilyRoot) error {
	r.roots[root.ID] = root
	return nil
}

func (r *fakeRootsRepo) DeleteRoot(ctx context.Context, rootID string) error {
	delete(r.roots, rootID)
	for id, node := range r.nodes {
		if node.RootID == rootID {
			delete(r.nodes, id)
		}
	}
	for id, rel := range r.relations {
		if rel.RootID == rootID {
			delete(r.relations, id)
		}
	}
	return nil
}

func (r *fakeRootsRepo) GetNode(ctx context.Context, nodeID string) (*RootNode, error) {
	node, ok := r.nodes[nodeID]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return node, nil
}

func (r *fakeRootsRepo) ListNodes(ctx context.Context, rootID string) ([]RootNode, error) {
	result := make([]RootNode, 0)
	for _, node := range r.nodes {
		if node.RootID == rootID {
			result = append(result, *node)
		}
	}
	return result, nil
}

func (r *fakeRootsRepo) CreateNode(ctx context.Context, node *RootNode) error {
	r.nodes[node.ID] = node
	return nil
}

func (r *fakeRootsRepo) UpdateNode(ctx context.Context, node *RootNode) error {
	if _, ok := r.nodes[node.ID]; !ok {
		return ErrNodeNotFound
	}
	r.nodes[node.ID] = node
	return nil
}

func (r *fakeRootsRepo) DeleteNode(ctx context.Context, nodeID string) error {
	delete(r.nodes, nodeID)
	return nil
}

func (r *fakeRootsRepo) GetRelation(ctx context.Context, relationID string) (*RootRelation, error) {
	relation, ok := r.relations[relationID]
	if !ok {
		return nil, ErrRelationNotFound
	}
	return relation, nil
}

func (r *fakeRootsRepo) ListRelations(ctx context.Context, rootID string) ([]RootRelation, error) {
	result := make([]RootRelation, 0)
	for _, relation := range r.relations {
		if relation.RootID == rootID {
			result = append(result, *relation)
		}
	}
	return result, nil
}

func (r *fakeRootsRepo) CountRelationsForNode(ctx context.Context, nodeID string) (int64, error) {
	var count int64
	for _, relation := range r.relations {
		if relation.FromNodeID == nodeID || relation.ToNodeID == nodeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRootsRepo) RelationExists(ctx context.Context, fromNodeID, toNodeID, relationType string) (bool, error) {
	for _, relation := range r.relations {
		if relation.Type != relationType {
			continue
		}
		if (relation.FromNodeID == fromNodeID && relation.ToNodeID == toNodeID) ||
			(relation.FromNodeID == toNodeID && relation.ToNodeID == fromNodeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRootsRepo) CreateRelation(ctx context.Context, relation *RootRelation) error {
	r.relations[relation.ID] = relation
	return nil
}

func (r *fakeRootsRepo) DeleteRelation(ctx context.Context, relationID string) error {
	delete(r.relations, relationID)
	return nil
}

func (r *fakeRootsRepo) LinkedMemberIDs(ctx context.Context, familyID string) ([]string, error) {
	ids := make([]string, 0)
	for _, node := range r.nodes {
		root, ok := r.roots[node.RootID]
		if !ok || root.FamilyID != familyID || node.LinkedMemberID == nil {
			continue
		}
		ids = append(ids, *node.LinkedMemberID)
	}
	return ids, nil
}

func (r *fakeRootsRepo) IsMemberLinked(ctx context.Context, familyID, memberID, excludeNodeID string) (bool, error) {
	for _, node := range r.nodes {
		if node.ID == excludeNodeID || node.LinkedMemberID == nil || *node.LinkedMemberID != memberID {
			continue
		}
		root, ok := r.roots[node.RootID]
		if ok && root.FamilyID == familyID {
			return true, nil
		}
	}
	return false, nil
}

// fakeAccess grants per-user roles: "admin", "member", "creator".
type fakeAccess struct {
	roles   map[string]string
	members map[string]*familydomain.FamilyMember
}

func newFakeAccess() *fakeAccess {
	return &fakeAccess{
		roles:   make(map[string]string),
		members: make(map[string]*familydomain.FamilyMember),
	}
}

func (a *fakeAccess) RequireMember(ctx context.Context, userID, familyID string) (*familydomain.FamilyMember, error) {
	if a.roles[userID] == "" {
		return nil, familydomain.ErrNotMember
	}
	return &familydomain.FamilyMember{FamilyID: familyID, UserID: userID}, nil
}

func (a *fakeAccess) RequireAdmin(ctx context.Context, userID, familyID string) (*familydomain.FamilyMember, error) {
	role := a.roles[userID]
	if role != "admin" && role != "creator" {
		return nil, familydomain.ErrNotAdmin
	}
	return &familydomain.FamilyMember{FamilyID: familyID, UserID: userID, Role: familydomain.RoleAdmin}, nil
}

func (a *fakeAccess) RequireCreator(ctx context.Context, userID, familyID string) error {
	if a.roles[userID] != "creator" {
		return familydomain.ErrNotAdmin
	}
	return nil
}

func (a *fakeAccess) ApprovedMembers(ctx context.Context, familyID string) ([]familydomain.MemberProfile, error) {
	profiles := make([]familydomain.MemberProfile, 0)
	for _, member := range a.members {
		if member.FamilyID == familyID && member.Status == familydomain.StatusApproved {
			profiles = append(profiles, familydomain.MemberProfile{MemberID: member.ID, UserID: member.UserID})
		}
	}
	return profiles, nil
}

func (a *fakeAccess) MemberByID(ctx context.Context, memberID string) (*familydomain.FamilyMember, error) {
	member, ok := a.members[memberID]
	if !ok {
		return nil, familydomain.ErrMemberNotFound
	}
	return member, nil
}

func newTestService() (*Service, *fakeRootsRepo, *fakeAccess) {
	repo := newFakeRootsRepo()
	access := newFakeAccess()
	access.roles["admin-1"] = "admin"
	access.roles["member-1"] = "member"
	access.roles["creator-1"] = "creator"
	return NewService(repo, access), repo, access
}

func seedRoot(repo *fakeRootsRepo) *FamilyRoot {
	root := &FamilyRoot{ID: "root-1", FamilyID: "fam-1", Name: "Smith Tree", CreatedByID: "creator-1"}
	repo.roots[root.ID] = root
	return root
}

func TestCreateRootOnePerFamily(t *testing.T) {
	svc, repo, _ := newTestService()

	root, err := svc.CreateRoot(context.Background(), "member-1", "fam-1", "Smith Tree", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if root.FamilyID != "fam-1" {
		t.Fatalf("expected fam-1, got %s", root.FamilyID)
	}

	_, err = svc.CreateRoot(context.Background(), "member-1", "fam-1", "Second Tree", nil)
	if !errors.Is(err, ErrRootAlreadyExists) {
		t.Fatalf("expected ErrRootAlreadyExists, got %v", err)
	}
	if len(repo.roots) != 1 {
		t.Fatalf("expected one root, got %d", len(repo.roots))
	}
}

func TestCreateRootRequiresMembership(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.CreateRoot(context.Background(), "stranger", "fam-1", "Tree", nil)
	if !errors.Is(err, familydomain.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestDeleteRootCreatorOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	seedRoot(repo)

	if err := svc.DeleteRoot(context.Background(), "admin-1", "root-1"); !errors.Is(err, familydomain.ErrNotAdmin) {
		t.Fatalf("expected admin to be refused, got %v", err)
	}
	if err := svc.DeleteRoot(context.Background(), "creator-1", "root-1"); err != nil {
		t.Fatalf("expected creator delete to pass, got %v", err)
	}
	if len(repo.roots) != 0 {
		t.Fatalf("expected root removed")
	}
}

func TestCreateNodeRequiresAdmin(t *testing.T) {
	svc, repo, _ := newTestService()
	seedRoot(repo)

	_, err := svc.CreateNode(context.Background(), "member-1", "root-1", NodeInput{FullName: "Grandpa Joe"})
	if !errors.Is(err, familydomain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	node, err := svc.CreateNode(context.Background(), "admin-1", "root-1", NodeInput{FullName: "Grandpa Joe"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if node.FullName != "Grandpa Joe" {
		t.Fatalf("unexpected node %+v", node)
	}
}

func TestNodeLinkValidation(t *testing.T) {
	svc, repo, access := newTestService()
	seedRoot(repo)
	access.members["mem-1"] = &familydomain.FamilyMember{ID: "mem-1", FamilyID: "fam-1", UserID: "member-1", Status: familydomain.StatusApproved}
	access.members["mem-other"] = &familydomain.FamilyMember{ID: "mem-other", FamilyID: "fam-2", UserID: "x", Status: familydomain.StatusApproved}
	access.members["mem-pending"] = &familydomain.FamilyMember{ID: "mem-pending", FamilyID: "fam-1", UserID: "y", Status: familydomain.StatusPending}

	link := "mem-other"
	_, err := svc.CreateNode(context.Background(), "admin-1", "root-1", NodeInput{FullName: "A", LinkedMemberID: &link})
	if !errors.Is(err, ErrMemberNotInFamily) {
		t.Fatalf("expected ErrMemberNotInFamily for foreign member, got %v", err)
	}

	link = "mem-pending"
	_, err = svc.CreateNode(context.Background(), "admin-1", "root-1", NodeInput{FullName: "A", LinkedMemberID: &link})
	if !errors.Is(err, ErrMemberNotInFamily) {
		t.Fatalf("expected ErrMemberNotInFamily for pending member, got %v", err)
	}

	link = "mem-1"
	first, err := svc.CreateNode(context.Background(), "admin-1", "root-1", NodeInput{FullName: "A", LinkedMemberID: &link})
	if err != nil {
		t.Fatalf("expected link to pass, got %v", err)
	}

	_, err = svc.CreateNode(context.Background(), "admin-1", "root-1", NodeInput{FullName: "B", LinkedMemberID: &link})
	if !errors.Is(err, ErrMemberAlreadyLinked) {
		t.Fatalf("expected ErrMemberAlreadyLinked, got %v", err)
	}

	// Re-linking the same member on its own node passes the exclusion.
	if _, err := svc.UpdateNode(context.Background(), "admin-1", "root-1", first.ID, NodeInput{FullName: "A", LinkedMemberID: &link}); err != nil {
		t.Fatalf("expected self re-link to pass, got %v", err)
	}
}

func TestUpdateNodeClearLink(t *testing.T) {
	svc, repo, access := newTestService()
	seedRoot(repo)
	access.members["mem-1"] = &familydomain.FamilyMember{ID: "mem-1", FamilyID: "fam-1", UserID: "member-1", Status: familydomain.StatusApproved}

	link := "mem-1"
	node, err := svc.CreateNode(context.Background(), "admin-1", "root-1", NodeInput{FullName: "A", LinkedMemberID: &link})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Nil leaves the link untouched.
	updated, err := svc.UpdateNode(context.Background(), "admin-1", "root-1", node.ID, NodeInput{FullName: "A"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.LinkedMemberID == nil {
		t.Fatalf("expected link kept on nil input")
	}

	// Empty string clears it.
	empty := ""
	updated, err = svc.UpdateNode(context.Background(), "admin-1", "root-1", node.ID, NodeInput{FullName: "A", LinkedMemberID: &empty})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.LinkedMemberID != nil {
		t.Fatalf("expected link cleared")
	}
}

func TestDeleteNodeBlockedByRelations(t *testing.T) {
	svc, repo, _ := newTestService()
	seedRoot(repo)
	repo.nodes["n-1"] = &RootNode{ID: "n-1", RootID: "root-1", FullName: "A"}
	repo.nodes["n-2"] = &RootNode{ID: "n-2", RootID: "root-1", FullName: "B"}
	repo.relations["r-1"] = &RootRelation{ID: "r-1", RootID: "root-1", FromNodeID: "n-1", ToNodeID: "n-2", Type: RelationParent}

	err := svc.DeleteNode(context.Background(), "admin-1", "root-1", "n-1")
	if !errors.Is(err, ErrNodeHasRelations) {
		t.Fatalf("expected ErrNodeHasRelations, got %v", err)
	}

	check, err := svc.CanDeleteNode(context.Background(), "member-1", "root-1", "n-1")
	if err != nil {
		t.Fatalf("can-delete failed: %v", err)
	}
	if check.CanDelete || check.RelationshipsCount != 1 {
		t.Fatalf("expected blocked with one relation, got %+v", check)
	}

	if err := svc.DeleteRelation(context.Background(), "admin-1", "root-1", "r-1"); err != nil {
		t.Fatalf("delete relation failed: %v", err)
	}
	if err := svc.DeleteNode(context.Background(), "admin-1", "root-1", "n-1"); err != nil {
		t.Fatalf("expected delete to pass after relation removal, got %v", err)
	}
}

func TestCreateRelationValidation(t *testing.T) {
	svc, repo, _ := newTestService()
	seedRoot(repo)
	repo.roots["root-2"] = &FamilyRoot{ID: "root-2", FamilyID: "fam-2", Name: "Other"}
	repo.nodes["n-1"] = &RootNode{ID: "n-1", RootID: "root-1", FullName: "A"}
	repo.nodes["n-2"] = &RootNode{ID: "n-2", RootID: "root-1", FullName: "B"}
	repo.nodes["n-3"] = &RootNode{ID: "n-3", RootID: "root-2", FullName: "C"}

	ctx := context.Background()

	if _, err := svc.CreateRelation(ctx, "admin-1", "root-1", RelationInput{FromNodeID: "n-1", ToNodeID: "n-2", Type: "COUSIN"}); !errors.Is(err, ErrInvalidRelationType) {
		t.Fatalf("expected ErrInvalidRelationType, got %v", err)
	}
	if _, err := svc.CreateRelation(ctx, "admin-1", "root-1", RelationInput{FromNodeID: "n-1", ToNodeID: "n-1", Type: RelationSpouse}); !errors.Is(err, ErrSelfRelation) {
		t.Fatalf("expected ErrSelfRelation, got %v", err)
	}
	if _, err := svc.CreateRelation(ctx, "admin-1", "root-1", RelationInput{FromNodeID: "n-1", ToNodeID: "n-3", Type: RelationSpouse}); !errors.Is(err, ErrNodesInDifferentRoot) {
		t.Fatalf("expected ErrNodesInDifferentRoot, got %v", err)
	}

	if _, err := svc.CreateRelation(ctx, "admin-1", "root-1", RelationInput{FromNodeID: "n-1", ToNodeID: "n-2", Type: RelationSpouse}); err != nil {
		t.Fatalf("expected relation to pass, got %v", err)
	}

	// The reversed duplicate is refused too.
	if _, err := svc.CreateRelation(ctx, "admin-1", "root-1", RelationInput{FromNodeID: "n-2", ToNodeID: "n-1", Type: RelationSpouse}); !errors.Is(err, ErrRelationExists) {
		t.Fatalf("expected ErrRelationExists, got %v", err)
	}
}

func TestUnlinkedMembers(t *testing.T) {
	svc, repo, access := newTestService()
	seedRoot(repo)
	access.members["mem-1"] = &familydomain.FamilyMember{ID: "mem-1", FamilyID: "fam-1", UserID: "u1", Status: familydomain.StatusApproved}
	access.members["mem-2"] = &familydomain.FamilyMember{ID: "mem-2", FamilyID: "fam-1", UserID: "u2", Status: familydomain.StatusApproved}
	link := "mem-1"
	repo.nodes["n-1"] = &RootNode{ID: "n-1", RootID: "root-1", FullName: "A", LinkedMemberID: &link}

	members, err := svc.UnlinkedMembers(context.Background(), "member-1", "fam-1", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(members) != 1 || members[0].MemberID != "mem-2" {
		t.Fatalf("expected only mem-2 unlinked, got %+v", members)
	}

	withInclude, err := svc.UnlinkedMembers(context.Background(), "member-1", "fam-1", "mem-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(withInclude) != 2 {
		t.Fatalf("expected linked member re-included, got %+v", withInclude)
	}
}
