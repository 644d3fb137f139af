package roots

import "errors"

var (
	ErrRootNotFound         = errors.New("family root not found")
	ErrRootAlreadyExists    = errors.New("family already has a root")
	ErrNodeNotFound         = errors.New("node not found")
	ErrNodeHasRelations     = errors.New("node still has relationships")
	ErrRelationNotFound     = errors.New("relation not found")
	ErrRelationExists       = errors.New("relation already exists")
	ErrInvalidRelationType  = errors.New("invalid relation type")
	ErrSelfRelation         = errors.New("node cannot relate to itself")
	ErrNodesInDifferentRoot = errors.New("nodes belong to different roots")
	ErrMemberNotInFamily    = errors.New("member does not belong to this family")
	ErrMemberAlreadyLinked  = errors.New("member is already linked to a node")
)
