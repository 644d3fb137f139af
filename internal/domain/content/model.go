package content

import (
	"io"
	"time"
)

const (
	MediaPhoto = "PHOTO"
	MediaVideo = "VIDEO"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

const (
	FilterAll    = "all"
	FilterPhotos = "photos"
	FilterVideos = "videos"
)

const (
	PostTextMaxLength    = 2000
	CommentMinLength     = 1
	CommentMaxLength     = 1000
	AlbumNameMinLength   = 2
	AlbumNameMaxLength   = 100
)

type Post struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	FamilyID  string    `gorm:"type:uuid;not null;index"`
	UserID    string    `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Album struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	FamilyID      string  `gorm:"type:uuid;not null;index"`
	Name          string  `gorm:"not null"`
	Description   *string `gorm:"type:text"`
	MediaLimit    int     `gorm:"not null"`
	CoverImageURL *string `gorm:"type:text"`
	CreatedByID   string  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Media belongs to exactly one of an album or a post.
type Media struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	Type         string  `gorm:"type:varchar(16);not null"`
	URL          string  `gorm:"type:text;not null"`
	StorageKey   string  `gorm:"type:text;not null"`
	Caption      *string `gorm:"type:text"`
	AlbumID      *string `gorm:"type:uuid;index"`
	PostID       *string `gorm:"type:uuid;index"`
	UploadedByID string  `gorm:"type:uuid;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Media) TableName() string { return "media" }

type Comment struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	PostID    string    `gorm:"type:uuid;not null;index"`
	UserID    string    `gorm:"type:uuid;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Like struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:uniq_post_user_like,priority:1"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:uniq_post_user_like,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Memory is a personal bookmark pointing at exactly one of an album or post.
type Memory struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	UserID    string  `gorm:"type:uuid;not null;index"`
	AlbumID   *string `gorm:"type:uuid"`
	PostID    *string `gorm:"type:uuid"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type FeedQuery struct {
	FamilyID  string
	Search    string
	Filter    string
	SortOrder string
	Page      int
	Limit     int
}

// FeedPost is a post annotated per caller: isLiked/isInMemory come from
// caller-scoped rows, never from a denormalized flag.
type FeedPost struct {
	Post         Post    `json:"post"`
	AuthorName   string  `json:"authorName"`
	AuthorAvatar *string `json:"authorAvatar,omitempty"`
	Media        []Media `json:"media"`
	LikeCount    int64   `json:"likeCount"`
	CommentCount int64   `json:"commentCount"`
	IsLiked      bool    `json:"isLiked"`
	IsInMemory   bool    `json:"isInMemory"`
}

type CommentView struct {
	Comment      Comment `json:"comment"`
	AuthorName   string  `json:"authorName"`
	AuthorAvatar *string `json:"authorAvatar,omitempty"`
}

type LikeView struct {
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UploadFile is one incoming multipart file, streamed to storage.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type AlbumUpdate struct {
	Name          *string
	Description   *string
	CoverImageURL *string
	MediaLimit    *int
}
