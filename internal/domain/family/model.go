package family

import "time"

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type Family struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	Name        string  `gorm:"not null"`
	Description *string `gorm:"type:text"`
	JoinToken   string  `gorm:"size:8;not null;uniqueIndex"`
	CreatedByID string  `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

type FamilyMember struct {
	ID       string    `gorm:"type:uuid;primaryKey"`
	FamilyID string    `gorm:"type:uuid;not null;uniqueIndex:uniq_family_user,priority:1"`
	UserID   string    `gorm:"type:uuid;not null;uniqueIndex:uniq_family_user,priority:2"`
	Role     string    `gorm:"type:varchar(16);not null"`
	Status   string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	Family Family `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE"`
}

// Summary is a family annotated for the member listing it: counts plus the
// caller's own standing in it.
type Summary struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Description          *string    `json:"description,omitempty"`
	JoinToken            string     `json:"joinToken,omitempty"`
	CreatedByID          string     `json:"createdById"`
	CreatedAt            time.Time  `json:"createdAt"`
	MemberCount          int64      `json:"memberCount"`
	IsAdmin              bool       `json:"isAdmin"`
	Status               string     `json:"status"`
	PendingRequestsCount int64      `json:"pendingRequestsCount"`
}

type MemberProfile struct {
	MemberID  string    `json:"memberId"`
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	Email     *string   `json:"email,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joinedAt"`
}

type Stats struct {
	MemberCount int64 `json:"memberCount"`
	PostCount   int64 `json:"postCount"`
	AlbumCount  int64 `json:"albumCount"`
	HasRoot     bool  `json:"hasRoot"`
}
