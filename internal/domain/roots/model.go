package roots

import "time"

const (
	RelationParent  = "PARENT"
	RelationSpouse  = "SPOUSE"
	RelationSibling = "SIBLING"
)

type FamilyRoot struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	FamilyID    string  `gorm:"type:uuid;not null;index"`
	Name        string  `gorm:"not null"`
	Description *string `gorm:"type:text"`
	CreatedByID string  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

type RootNode struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	RootID         string  `gorm:"type:uuid;not null;index"`
	FullName       string  `gorm:"not null"`
	Gender         *string `gorm:"type:varchar(16)"`
	BirthDate      *time.Time
	DeathDate      *time.Time
	Bio            *string `gorm:"type:text"`
	PictureURL     *string `gorm:"type:text"`
	LinkedMemberID *string `gorm:"type:uuid;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	Root FamilyRoot `gorm:"foreignKey:RootID;references:ID;constraint:OnDelete:CASCADE"`
}

// RootRelation is a single directed edge. Direction carries meaning for
// PARENT (from = parent, to = child); SPOUSE and SIBLING are symmetric in
// meaning but still stored once.
type RootRelation struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	RootID     string `gorm:"type:uuid;not null;index"`
	FromNodeID string `gorm:"type:uuid;not null;index"`
	ToNodeID   string `gorm:"type:uuid;not null;index"`
	Type       string `gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Root FamilyRoot `gorm:"foreignKey:RootID;references:ID;constraint:OnDelete:CASCADE"`
}

// RootDetail is a root with its full graph, as the tree editor loads it.
type RootDetail struct {
	Root      FamilyRoot     `json:"root"`
	Nodes     []RootNode     `json:"nodes"`
	Relations []RootRelation `json:"relations"`
}

// NodeInput carries the editable node fields. LinkedMemberID semantics on
// update: nil leaves the link alone, empty string clears it, anything else
// links that member.
type NodeInput struct {
	FullName       string
	Gender         *string
	BirthDate      *time.Time
	DeathDate      *time.Time
	Bio            *string
	PictureURL     *string
	LinkedMemberID *string
}

type RelationInput struct {
	FromNodeID string
	ToNodeID   string
	Type       string
}

// DeleteCheck is the pre-flight answer for node deletion.
type DeleteCheck struct {
	CanDelete          bool  `json:"canDelete"`
	RelationshipsCount int64 `json:"relationshipsCount"`
}
