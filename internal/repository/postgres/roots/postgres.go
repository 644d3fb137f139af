package roots

import (
	"context"
	"errors"

	rootsdomain "fambook-go/internal/domain/roots"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(rootsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetRoot(ctx context.Context, rootID string) (*rootsdomain.FamilyRoot, error) {
	var root rootsdomain.FamilyRoot
	if err := r.db.WithContext(ctx).Where("id = ?", rootID).First(&root).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rootsdomain.ErrRootNotFound
		}
		return nil, err
	}
	return &root, nil
}

func (r *PostgresRepository) ListRootsByFamily(ctx context.Context, familyID string) ([]rootsdomain.FamilyRoot, error) {
	var roots []rootsdomain.FamilyRoot
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at asc").
		Find(&roots).Error
	if err != nil {
		return nil, err
	}
	return roots, nil
}

func (r *PostgresRepository) FamilyHasRoot(ctx context.Context, familyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rootsdomain.FamilyRoot{}).
		Where("family_id = ?", familyID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateRoot(ctx context.Context, root *rootsdomain.FamilyRoot) error {
	return r.db.WithContext(ctx).Create(root).Error
}

func (r *PostgresRepository) DeleteRoot(ctx context.Context, rootID string) error {
	// Nodes and relations go with it through the FK cascades.
	return r.db.WithContext(ctx).Where("id = ?", rootID).Delete(&rootsdomain.FamilyRoot{}).Error
}

func (r *PostgresRepository) GetNode(ctx context.Context, nodeID string) (*rootsdomain.RootNode, error) {
	var node rootsdomain.RootNode
	if err := r.db.WithContext(ctx).Where("id = ?", nodeID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rootsdomain.ErrNodeNotFound
		}
		return nil, err
	}
	return &node, nil
}

func (r *PostgresRepository) ListNodes(ctx context.Context, rootID string) ([]rootsdomain.RootNode, error) {
	var nodes []rootsdomain.RootNode
	err := r.db.WithContext(ctx).
		Where("root_id = ?", rootID).
		Order("created_at asc").
		Find(&nodes).Error
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *PostgresRepository) CreateNode(ctx context.Context, node *rootsdomain.RootNode) error {
	return r.db.WithContext(ctx).Create(node).Error
}

func (r *PostgresRepository) UpdateNode(ctx context.Context, node *rootsdomain.RootNode) error {
	return r.db.WithContext(ctx).
		Model(&rootsdomain.RootNode{}).
		Where("id = ?", node.ID).
		Updates(map[string]interface{}{
			"full_name":        node.FullName,
			"gender":           node.Gender,
			"birth_date":       node.BirthDate,
			"death_date":       node.DeathDate,
			"bio":              node.Bio,
			"picture_url":      node.PictureURL,
			"linked_member_id": node.LinkedMemberID,
		}).Error
}

func (r *PostgresRepository) DeleteNode(ctx context.Context, nodeID string) error {
	return r.db.WithContext(ctx).Where("id = ?", nodeID).Delete(&rootsdomain.RootNode{}).Error
}

func (r *PostgresRepository) GetRelation(ctx context.Context, relationID string) (*rootsdomain.RootRelation, error) {
	var rel rootsdomain.RootRelation
	if err := r.db.WithContext(ctx).Where("id = ?", relationID).First(&rel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rootsdomain.ErrRelationNotFound
		}
		return nil, err
	}
	return &rel, nil
}

func (r *PostgresRepository) ListRelations(ctx context.Context, rootID string) ([]rootsdomain.RootRelation, error) {
	var rels []rootsdomain.RootRelation
	err := r.db.WithContext(ctx).
		Where("root_id = ?", rootID).
		Order("created_at asc").
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *PostgresRepository) CountRelationsForNode(ctx context.Context, nodeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rootsdomain.RootRelation{}).
		Where("from_node_id = ? OR to_node_id = ?", nodeID, nodeID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) RelationExists(ctx context.Context, fromNodeID, toNodeID, relationType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rootsdomain.RootRelation{}).
		Where("type = ?", relationType).
		Where("(from_node_id = ? AND to_node_id = ?) OR (from_node_id = ? AND to_node_id = ?)",
			fromNodeID, toNodeID, toNodeID, fromNodeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateRelation(ctx context.Context, relation *rootsdomain.RootRelation) error {
	return r.db.WithContext(ctx).Create(relation).Error
}

func (r *PostgresRepository) DeleteRelation(ctx context.Context, relationID string) error {
	return r.db.WithContext(ctx).Where("id = ?", relationID).Delete(&rootsdomain.RootRelation{}).Error
}

func (r *PostgresRepository) LinkedMemberIDs(ctx context.Context, familyID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&rootsdomain.RootNode{}).
		Joins("JOIN family_roots ON family_roots.id = root_nodes.root_id").
		Where("family_roots.family_id = ?", familyID).
		Where("root_nodes.linked_member_id IS NOT NULL").
		Pluck("root_nodes.linked_member_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresRepository) IsMemberLinked(ctx context.Context, familyID, memberID, excludeNodeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&rootsdomain.RootNode{}).
		Joins("JOIN family_roots ON family_roots.id = root_nodes.root_id").
		Where("family_roots.family_id = ?", familyID).
		Where("root_nodes.linked_member_id = ?", memberID)
	if excludeNodeID != "" {
		q = q.Where("root_nodes.id <> ?", excludeNodeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
