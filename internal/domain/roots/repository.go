package roots

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetRoot(ctx context.Context, rootID string) (*FamilyRoot, error)
	ListRootsByFamily(ctx context.Context, familyID string) ([]FamilyRoot, error)
	FamilyHasRoot(ctx context.Context, familyID string) (bool, error)
	CreateRoot(ctx context.Context, root *FamilyRoot) error
	DeleteRoot(ctx context.Context, rootID string) error

	GetNode(ctx context.Context, nodeID string) (*RootNode, error)
	ListNodes(ctx context.Context, rootID string) ([]RootNode, error)
	CreateNode(ctx context.Context, node *RootNode) error
	UpdateNode(ctx context.Context, node *RootNode) error
	DeleteNode(ctx context.Context, nodeID string) error

	GetRelation(ctx context.Context, relationID string) (*RootRelation, error)
	ListRelations(ctx context.Context, rootID string) ([]RootRelation, error)
	CountRelationsForNode(ctx context.Context, nodeID string) (int64, error)
	RelationExists(ctx context.Context, fromNodeID, toNodeID, relationType string) (bool, error)
	CreateRelation(ctx context.Context, relation *RootRelation) error
	DeleteRelation(ctx context.Context, relationID string) error

	// LinkedMemberIDs returns the member ids already attached to some node
	// in any root of the family.
	LinkedMemberIDs(ctx context.Context, familyID string) ([]string, error)
	IsMemberLinked(ctx context.Context, familyID, memberID, excludeNodeID string) (bool, error)
}
