package roots

import (
	"context"
	"fmt"
	"strings"

	familydomain "fambook-go/internal/domain/family"
	"github.com/google/uuid"
)

// FamilyAccess is the slice of the membership model the tree editor needs:
// the authorization gates plus member lookups for node links.
type FamilyAccess interface {
	RequireMember(ctx context.Context, userID, familyID string) (*familydomain.FamilyMember, error)
	RequireAdmin(ctx context.Context, userID, familyID string) (*familydomain.FamilyMember, error)
	RequireCreator(ctx context.Context, userID, familyID string) error
	ApprovedMembers(ctx context.Context, familyID string) ([]familydomain.MemberProfile, error)
	MemberByID(ctx context.Context, memberID string) (*familydomain.FamilyMember, error)
}

type Service struct {
	repo   Repository
	access FamilyAccess
}

func NewService(repo Repository, access FamilyAccess) *Service {
	return &Service{repo: repo, access: access}
}

// CreateRoot starts a family tree. One root per family; the existence check
// is a read before the insert, so two simultaneous creates can both pass it.
func (s *Service) CreateRoot(ctx context.Context, userID, familyID, name string, description *string) (*FamilyRoot, error) {
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	var result FamilyRoot
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.FamilyHasRoot(ctx, familyID)
		if err != nil {
			return err
		}
		if exists {
			return ErrRootAlreadyExists
		}

		root := FamilyRoot{
			ID:          uuid.NewString(),
			FamilyID:    familyID,
			Name:        name,
			Description: description,
			CreatedByID: userID,
		}
		if err := tx.CreateRoot(ctx, &root); err != nil {
			return err
		}

		result = root
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) ListRoots(ctx context.Context, userID, familyID string) ([]FamilyRoot, error) {
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}
	return s.repo.ListRootsByFamily(ctx, familyID)
}

func (s *Service) GetRoot(ctx context.Context, userID, rootID string) (*RootDetail, error) {
	root, err := s.repo.GetRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, root.FamilyID); err != nil {
		return nil, err
	}

	nodes, err := s.repo.ListNodes(ctx, rootID)
	if err != nil {
		return nil, err
	}
	relations, err := s.repo.ListRelations(ctx, rootID)
	if err != nil {
		return nil, err
	}

	return &RootDetail{Root: *root, Nodes: nodes, Relations: relations}, nil
}

// DeleteRoot is reserved for the family creator. Nodes and relations go with
// it through the storage cascade.
func (s *Service) DeleteRoot(ctx context.Context, userID, rootID string) error {
	root, err := s.repo.GetRoot(ctx, rootID)
	if err != nil {
		return err
	}
	if err := s.access.RequireCreator(ctx, userID, root.FamilyID); err != nil {
		return err
	}
	return s.repo.DeleteRoot(ctx, rootID)
}

func (s *Service) CreateNode(ctx context.Context, userID, rootID string, input NodeInput) (*RootNode, error) {
	root, err := s.repo.GetRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAdmin(ctx, userID, root.FamilyID); err != nil {
		return nil, err
	}

	input.FullName = strings.TrimSpace(input.FullName)
	if input.FullName == "" {
		return nil, fmt.Errorf("full name is required")
	}

	node := RootNode{
		ID:         uuid.NewString(),
		RootID:     rootID,
		FullName:   input.FullName,
		Gender:     input.Gender,
		BirthDate:  input.BirthDate,
		DeathDate:  input.DeathDate,
		Bio:        input.Bio,
		PictureURL: input.PictureURL,
	}

	if input.LinkedMemberID != nil && *input.LinkedMemberID != "" {
		if err := s.checkLinkable(ctx, root.FamilyID, *input.LinkedMemberID, ""); err != nil {
			return nil, err
		}
		node.LinkedMemberID = input.LinkedMemberID
	}

	if err := s.repo.CreateNode(ctx, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *Service) UpdateNode(ctx context.Context, userID, rootID, nodeID string, input NodeInput) (*RootNode, error) {
	root, node, err := s.nodeInRoot(ctx, rootID, nodeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAdmin(ctx, userID, root.FamilyID); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.FullName); name != "" {
		node.FullName = name
	}
	node.Gender = input.Gender
	node.BirthDate = input.BirthDate
	node.DeathDate = input.DeathDate
	node.Bio = input.Bio
	node.PictureURL = input.PictureURL

	if input.LinkedMemberID != nil {
		if *input.LinkedMemberID == "" {
			node.LinkedMemberID = nil
		} else {
			if err := s.checkLinkable(ctx, root.FamilyID, *input.LinkedMemberID, node.ID); err != nil {
				return nil, err
			}
			node.LinkedMemberID = input.LinkedMemberID
		}
	}

	if err := s.repo.UpdateNode(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteNode refuses while any relation still references the node; the
// caller has to remove the edges first.
func (s *Service) DeleteNode(ctx context.Context, userID, rootID, nodeID string) error {
	root, node, err := s.nodeInRoot(ctx, rootID, nodeID)
	if err != nil {
		return err
	}
	if _, err := s.access.RequireAdmin(ctx, userID, root.FamilyID); err != nil {
		return err
	}

	count, err := s.repo.CountRelationsForNode(ctx, node.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrNodeHasRelations
	}

	return s.repo.DeleteNode(ctx, node.ID)
}

// CanDeleteNode is the read-only pre-flight for DeleteNode.
func (s *Service) CanDeleteNode(ctx context.Context, userID, rootID, nodeID string) (DeleteCheck, error) {
	root, node, err := s.nodeInRoot(ctx, rootID, nodeID)
	if err != nil {
		return DeleteCheck{}, err
	}
	if _, err := s.access.RequireMember(ctx, userID, root.FamilyID); err != nil {
		return DeleteCheck{}, err
	}

	count, err := s.repo.CountRelationsForNode(ctx, node.ID)
	if err != nil {
		return DeleteCheck{}, err
	}
	return DeleteCheck{CanDelete: count == 0, RelationshipsCount: count}, nil
}

func (s *Service) CreateRelation(ctx context.Context, userID, rootID string, input RelationInput) (*RootRelation, error) {
	root, err := s.repo.GetRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAdmin(ctx, userID, root.FamilyID); err != nil {
		return nil, err
	}

	switch input.Type {
	case RelationParent, RelationSpouse, RelationSibling:
	default:
		return nil, ErrInvalidRelationType
	}
	if input.FromNodeID == input.ToNodeID {
		return nil, ErrSelfRelation
	}

	from, err := s.repo.GetNode(ctx, input.FromNodeID)
	if err != nil {
		return nil, err
	}
	to, err := s.repo.GetNode(ctx, input.ToNodeID)
	if err != nil {
		return nil, err
	}
	if from.RootID != rootID || to.RootID != rootID {
		return nil, ErrNodesInDifferentRoot
	}

	exists, err := s.repo.RelationExists(ctx, input.FromNodeID, input.ToNodeID, input.Type)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRelationExists
	}

	relation := RootRelation{
		ID:         uuid.NewString(),
		RootID:     rootID,
		FromNodeID: input.FromNodeID,
		ToNodeID:   input.ToNodeID,
		Type:       input.Type,
	}
	if err := s.repo.CreateRelation(ctx, &relation); err != nil {
		return nil, err
	}
	return &relation, nil
}

func (s *Service) DeleteRelation(ctx context.Context, userID, rootID, relationID string) error {
	root, err := s.repo.GetRoot(ctx, rootID)
	if err != nil {
		return err
	}
	if _, err := s.access.RequireAdmin(ctx, userID, root.FamilyID); err != nil {
		return err
	}

	relation, err := s.repo.GetRelation(ctx, relationID)
	if err != nil {
		return err
	}
	if relation.RootID != rootID {
		return ErrRelationNotFound
	}

	return s.repo.DeleteRelation(ctx, relationID)
}

// UnlinkedMembers returns the approved members not yet attached to any node:
// approvedMembers minus linkedMemberIDs, optionally re-including one member
// so an existing link still shows up while being edited.
func (s *Service) UnlinkedMembers(ctx context.Context, userID, familyID, includeMemberID string) ([]familydomain.MemberProfile, error) {
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}

	members, err := s.access.ApprovedMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	linkedIDs, err := s.repo.LinkedMemberIDs(ctx, familyID)
	if err != nil {
		return nil, err
	}

	linked := make(map[string]struct{}, len(linkedIDs))
	for _, id := range linkedIDs {
		linked[id] = struct{}{}
	}

	result := make([]familydomain.MemberProfile, 0, len(members))
	for _, member := range members {
		if _, isLinked := linked[member.MemberID]; isLinked && member.MemberID != includeMemberID {
			continue
		}
		result = append(result, member)
	}
	return result, nil
}

func (s *Service) nodeInRoot(ctx context.Context, rootID, nodeID string) (*FamilyRoot, *RootNode, error) {
	root, err := s.repo.GetRoot(ctx, rootID)
	if err != nil {
		return nil, nil, err
	}
	node, err := s.repo.GetNode(ctx, nodeID)
	if err != nil {
		return nil, nil, err
	}
	if node.RootID != rootID {
		return nil, nil, ErrNodeNotFound
	}
	return root, node, nil
}

func (s *Service) checkLinkable(ctx context.Context, familyID, memberID, excludeNodeID string) error {
	member, err := s.access.MemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.FamilyID != familyID || member.Status != familydomain.StatusApproved {
		return ErrMemberNotInFamily
	}

	alreadyLinked, err := s.repo.IsMemberLinked(ctx, familyID, memberID, excludeNodeID)
	if err != nil {
		return err
	}
	if alreadyLinked {
		return ErrMemberAlreadyLinked
	}
	return nil
}
