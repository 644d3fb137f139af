package content

import (
	"context"

	"fambook-go/internal/domain/notification"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, postID string) (*Post, error)
	DeletePost(ctx context.Context, postID string) error
	GetFeedPost(ctx context.Context, userID, postID string) (*FeedPost, error)
	ListFeed(ctx context.Context, userID string, q FeedQuery) ([]FeedPost, error)

	CreateAlbum(ctx context.Context, album *Album) error
	GetAlbum(ctx context.Context, albumID string) (*Album, error)
	ListAlbums(ctx context.Context, familyID string) ([]Album, error)
	UpdateAlbum(ctx context.Context, album *Album) error
	DeleteAlbum(ctx context.Context, albumID string) error

	CreateMedia(ctx context.Context, rows []Media) error
	GetMedia(ctx context.Context, mediaID string) (*Media, error)
	ListAlbumMedia(ctx context.Context, albumID string) ([]Media, error)
	ListPostMedia(ctx context.Context, postID string) ([]Media, error)
	CountAlbumMedia(ctx context.Context, albumID string) (int64, error)
	UpdateMediaCaption(ctx context.Context, mediaID string, caption *string) error
	DeleteMedia(ctx context.Context, mediaID string) error

	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, commentID string) (*Comment, error)
	UpdateComment(ctx context.Context, comment *Comment) error
	DeleteComment(ctx context.Context, commentID string) error
	ListComments(ctx context.Context, postID string, offset, limit int) ([]CommentView, error)

	GetLike(ctx context.Context, postID, userID string) (*Like, error)
	CreateLike(ctx context.Context, like *Like) error
	DeleteLike(ctx context.Context, likeID string) error
	ListLikes(ctx context.Context, postID string) ([]LikeView, error)

	CreateMemory(ctx context.Context, memory *Memory) error
	GetMemory(ctx context.Context, memoryID string) (*Memory, error)
	FindMemory(ctx context.Context, userID string, albumID, postID *string) (*Memory, error)
	ListMemories(ctx context.Context, userID string) ([]Memory, error)
	DeleteMemory(ctx context.Context, memoryID string) error

	CreateNotifications(ctx context.Context, rows []notification.Notification) error
}
