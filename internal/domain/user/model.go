package user

import "time"

// Principal is the authenticated identity handed over by the external
// identity provider.
type Principal struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

type User struct {
	ID                 string  `gorm:"type:uuid;primaryKey"`
	ExternalID         string  `gorm:"not null;uniqueIndex"`
	Email              string  `gorm:"not null"`
	FullName           string  `gorm:"not null"`
	Bio                *string `gorm:"type:text"`
	BirthPlace         *string
	CurrentPlace       *string
	RelationshipStatus *string         `gorm:"type:varchar(32)"`
	ProfilePictureURL  *string         `gorm:"type:text"`
	Languages          StringList      `gorm:"type:jsonb"`
	Interests          StringList      `gorm:"type:jsonb"`
	Privacy            PrivacySettings `gorm:"type:jsonb"`
	CreatedAt          time.Time       `gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime"`
}

type Education struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;not null;index"`
	School    string `gorm:"not null"`
	Degree    *string
	Field     *string
	StartDate time.Time  `gorm:"not null"`
	EndDate   *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type WorkHistory struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;not null;index"`
	Company   string `gorm:"not null"`
	Title     string `gorm:"not null"`
	Location  *string
	StartDate time.Time  `gorm:"not null"`
	EndDate   *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BasicInfoUpdate carries the owner-editable profile fields. Nil pointers
// leave the stored value untouched.
type BasicInfoUpdate struct {
	FullName           *string
	Bio                *string
	BirthPlace         *string
	CurrentPlace       *string
	RelationshipStatus *string
	Languages          *[]string
}

// Profile is a user as seen by a particular viewer, after privacy filtering.
type Profile struct {
	ID                 string    `json:"id"`
	FullName           string    `json:"fullName"`
	ProfilePictureURL  *string   `json:"profilePictureUrl,omitempty"`
	Email              *string   `json:"email,omitempty"`
	Bio                *string   `json:"bio,omitempty"`
	BirthPlace         *string   `json:"birthPlace,omitempty"`
	CurrentPlace       *string   `json:"currentPlace,omitempty"`
	RelationshipStatus *string   `json:"relationshipStatus,omitempty"`
	Languages          []string  `json:"languages,omitempty"`
	Interests          []string  `json:"interests,omitempty"`
	VisibleTabs        []string  `json:"visibleTabs"`
	IsOwner            bool      `json:"isOwner"`
}
