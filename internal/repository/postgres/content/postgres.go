package content

import (
	"context"
	"errors"
	"time"

	contentdomain "fambook-go/internal/domain/content"
	familydomain "fambook-go/internal/domain/family"
	notifdomain "fambook-go/internal/domain/notification"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(contentdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreatePost(ctx context.Context, post *contentdomain.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresRepository) GetPost(ctx context.Context, postID string) (*contentdomain.Post, error) {
	var post contentdomain.Post
	if err := r.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostgresRepository) DeletePost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&contentdomain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&contentdomain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&contentdomain.Memory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&contentdomain.Media{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", postID).Delete(&contentdomain.Post{}).Error
	})
}

type postRow struct {
	ID           string
	FamilyID     string
	UserID       string
	Text         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AuthorName   *string
	AuthorAvatar *string
}

const postRowSelect = `posts.id, posts.family_id, posts.user_id, posts.text,
	posts.created_at, posts.updated_at,
	users.full_name AS author_name, users.profile_picture_url AS author_avatar`

func (r *PostgresRepository) ListFeed(ctx context.Context, userID string, q contentdomain.FeedQuery) ([]contentdomain.FeedPost, error) {
	query := r.db.WithContext(ctx).
		Table("posts").
		Select(postRowSelect).
		Joins("JOIN users ON users.id = posts.user_id")

	if q.FamilyID != "" {
		query = query.Where("posts.family_id = ?", q.FamilyID)
	} else {
		query = query.Joins(
			"JOIN family_members ON family_members.family_id = posts.family_id AND family_members.user_id = ? AND family_members.status = ?",
			userID, familydomain.StatusApproved)
	}

	if q.Search != "" {
		query = query.Where("users.full_name ILIKE ?", "%"+q.Search+"%")
	}
	switch q.Filter {
	case contentdomain.FilterPhotos:
		query = query.Where("EXISTS (SELECT 1 FROM media WHERE media.post_id = posts.id AND media.type = ?)",
			contentdomain.MediaPhoto)
	case contentdomain.FilterVideos:
		query = query.Where("EXISTS (SELECT 1 FROM media WHERE media.post_id = posts.id AND media.type = ?)",
			contentdomain.MediaVideo)
	}

	order := "posts.created_at desc"
	if q.SortOrder == contentdomain.SortOldest {
		order = "posts.created_at asc"
	}

	var rows []postRow
	err := query.
		Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []contentdomain.FeedPost{}, nil
	}
	return r.annotateRows(ctx, userID, rows)
}

func (r *PostgresRepository) GetFeedPost(ctx context.Context, userID, postID string) (*contentdomain.FeedPost, error) {
	var rows []postRow
	err := r.db.WithContext(ctx).
		Table("posts").
		Select(postRowSelect).
		Joins("JOIN users ON users.id = posts.user_id").
		Where("posts.id = ?", postID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, contentdomain.ErrPostNotFound
	}
	feed, err := r.annotateRows(ctx, userID, rows)
	if err != nil {
		return nil, err
	}
	return &feed[0], nil
}

// annotateRows attaches media, like/comment counts and the caller's own
// like/memory flags to scanned post rows.
func (r *PostgresRepository) annotateRows(ctx context.Context, userID string, rows []postRow) ([]contentdomain.FeedPost, error) {
	postIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		postIDs = append(postIDs, row.ID)
	}

	mediaByPost, err := r.postMediaByPost(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := r.countByPost(ctx, "likes", postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := r.countByPost(ctx, "comments", postIDs)
	if err != nil {
		return nil, err
	}
	liked, err := r.postIDSet(ctx, "likes", userID, postIDs)
	if err != nil {
		return nil, err
	}
	remembered, err := r.postIDSet(ctx, "memories", userID, postIDs)
	if err != nil {
		return nil, err
	}

	feed := make([]contentdomain.FeedPost, 0, len(rows))
	for _, row := range rows {
		name := ""
		if row.AuthorName != nil {
			name = *row.AuthorName
		}
		media := mediaByPost[row.ID]
		if media == nil {
			media = []contentdomain.Media{}
		}
		feed = append(feed, contentdomain.FeedPost{
			Post: contentdomain.Post{
				ID:        row.ID,
				FamilyID:  row.FamilyID,
				UserID:    row.UserID,
				Text:      row.Text,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			AuthorName:   name,
			AuthorAvatar: row.AuthorAvatar,
			Media:        media,
			LikeCount:    likeCounts[row.ID],
			CommentCount: commentCounts[row.ID],
			IsLiked:      liked[row.ID],
			IsInMemory:   remembered[row.ID],
		})
	}
	return feed, nil
}

func (r *PostgresRepository) postMediaByPost(ctx context.Context, postIDs []string) (map[string][]contentdomain.Media, error) {
	var media []contentdomain.Media
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at asc").
		Find(&media).Error
	if err != nil {
		return nil, err
	}
	byPost := make(map[string][]contentdomain.Media, len(postIDs))
	for _, m := range media {
		if m.PostID == nil {
			continue
		}
		byPost[*m.PostID] = append(byPost[*m.PostID], m)
	}
	return byPost, nil
}

func (r *PostgresRepository) countByPost(ctx context.Context, table string, postIDs []string) (map[string]int64, error) {
	type countRow struct {
		PostID string
		Total  int64
	}
	var counts []countRow
	err := r.db.WithContext(ctx).
		Table(table).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byPost := make(map[string]int64, len(counts))
	for _, c := range counts {
		byPost[c.PostID] = c.Total
	}
	return byPost, nil
}

func (r *PostgresRepository) postIDSet(ctx context.Context, table, userID string, postIDs []string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table(table).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *PostgresRepository) CreateAlbum(ctx context.Context, album *contentdomain.Album) error {
	return r.db.WithContext(ctx).Create(album).Error
}

func (r *PostgresRepository) GetAlbum(ctx context.Context, albumID string) (*contentdomain.Album, error) {
	var album contentdomain.Album
	if err := r.db.WithContext(ctx).Where("id = ?", albumID).First(&album).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrAlbumNotFound
		}
		return nil, err
	}
	return &album, nil
}

func (r *PostgresRepository) ListAlbums(ctx context.Context, familyID string) ([]contentdomain.Album, error) {
	var albums []contentdomain.Album
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at desc").
		Find(&albums).Error
	if err != nil {
		return nil, err
	}
	return albums, nil
}

func (r *PostgresRepository) UpdateAlbum(ctx context.Context, album *contentdomain.Album) error {
	return r.db.WithContext(ctx).
		Model(&contentdomain.Album{}).
		Where("id = ?", album.ID).
		Updates(map[string]interface{}{
			"name":            album.Name,
			"description":     album.Description,
			"media_limit":     album.MediaLimit,
			"cover_image_url": album.CoverImageURL,
		}).Error
}

func (r *PostgresRepository) DeleteAlbum(ctx context.Context, albumID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", albumID).Delete(&contentdomain.Memory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", albumID).Delete(&contentdomain.Media{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", albumID).Delete(&contentdomain.Album{}).Error
	})
}

func (r *PostgresRepository) CreateMedia(ctx context.Context, rows []contentdomain.Media) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) GetMedia(ctx context.Context, mediaID string) (*contentdomain.Media, error) {
	var media contentdomain.Media
	if err := r.db.WithContext(ctx).Where("id = ?", mediaID).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrMediaNotFound
		}
		return nil, err
	}
	return &media, nil
}

func (r *PostgresRepository) ListAlbumMedia(ctx context.Context, albumID string) ([]contentdomain.Media, error) {
	var media []contentdomain.Media
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("created_at asc").
		Find(&media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (r *PostgresRepository) ListPostMedia(ctx context.Context, postID string) ([]contentdomain.Media, error) {
	var media []contentdomain.Media
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (r *PostgresRepository) CountAlbumMedia(ctx context.Context, albumID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&contentdomain.Media{}).
		Where("album_id = ?", albumID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) UpdateMediaCaption(ctx context.Context, mediaID string, caption *string) error {
	return r.db.WithContext(ctx).
		Model(&contentdomain.Media{}).
		Where("id = ?", mediaID).
		Update("caption", caption).Error
}

func (r *PostgresRepository) DeleteMedia(ctx context.Context, mediaID string) error {
	return r.db.WithContext(ctx).Where("id = ?", mediaID).Delete(&contentdomain.Media{}).Error
}

func (r *PostgresRepository) CreateComment(ctx context.Context, comment *contentdomain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresRepository) GetComment(ctx context.Context, commentID string) (*contentdomain.Comment, error) {
	var comment contentdomain.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresRepository) UpdateComment(ctx context.Context, comment *contentdomain.Comment) error {
	return r.db.WithContext(ctx).
		Model(&contentdomain.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content).Error
}

func (r *PostgresRepository) DeleteComment(ctx context.Context, commentID string) error {
	return r.db.WithContext(ctx).Where("id = ?", commentID).Delete(&contentdomain.Comment{}).Error
}

func (r *PostgresRepository) ListComments(ctx context.Context, postID string, offset, limit int) ([]contentdomain.CommentView, error) {
	type commentRow struct {
		ID           string
		PostID       string
		UserID       string
		Content      string
		CreatedAt    time.Time
		UpdatedAt    time.Time
		AuthorName   *string
		AuthorAvatar *string
	}
	var rows []commentRow
	err := r.db.WithContext(ctx).
		Table("comments").
		Select(`comments.id, comments.post_id, comments.user_id, comments.content,
			comments.created_at, comments.updated_at,
			users.full_name AS author_name, users.profile_picture_url AS author_avatar`).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at asc").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]contentdomain.CommentView, 0, len(rows))
	for _, row := range rows {
		name := ""
		if row.AuthorName != nil {
			name = *row.AuthorName
		}
		views = append(views, contentdomain.CommentView{
			Comment: contentdomain.Comment{
				ID:        row.ID,
				PostID:    row.PostID,
				UserID:    row.UserID,
				Content:   row.Content,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			AuthorName:   name,
			AuthorAvatar: row.AuthorAvatar,
		})
	}
	return views, nil
}

func (r *PostgresRepository) GetLike(ctx context.Context, postID, userID string) (*contentdomain.Like, error) {
	var like contentdomain.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrLikeNotFound
		}
		return nil, err
	}
	return &like, nil
}

func (r *PostgresRepository) CreateLike(ctx context.Context, like *contentdomain.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *PostgresRepository) DeleteLike(ctx context.Context, likeID string) error {
	return r.db.WithContext(ctx).Where("id = ?", likeID).Delete(&contentdomain.Like{}).Error
}

func (r *PostgresRepository) ListLikes(ctx context.Context, postID string) ([]contentdomain.LikeView, error) {
	var views []contentdomain.LikeView
	err := r.db.WithContext(ctx).
		Table("likes").
		Select(`likes.user_id, users.full_name, users.profile_picture_url AS avatar_url, likes.created_at`).
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.post_id = ?", postID).
		Order("likes.created_at desc").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *PostgresRepository) CreateMemory(ctx context.Context, memory *contentdomain.Memory) error {
	return r.db.WithContext(ctx).Create(memory).Error
}

func (r *PostgresRepository) GetMemory(ctx context.Context, memoryID string) (*contentdomain.Memory, error) {
	var memory contentdomain.Memory
	if err := r.db.WithContext(ctx).Where("id = ?", memoryID).First(&memory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrMemoryNotFound
		}
		return nil, err
	}
	return &memory, nil
}

func (r *PostgresRepository) FindMemory(ctx context.Context, userID string, albumID, postID *string) (*contentdomain.Memory, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if albumID != nil {
		q = q.Where("album_id = ?", *albumID)
	} else {
		q = q.Where("post_id = ?", *postID)
	}
	var memory contentdomain.Memory
	if err := q.First(&memory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contentdomain.ErrMemoryNotFound
		}
		return nil, err
	}
	return &memory, nil
}

func (r *PostgresRepository) ListMemories(ctx context.Context, userID string) ([]contentdomain.Memory, error) {
	var memories []contentdomain.Memory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&memories).Error
	if err != nil {
		return nil, err
	}
	return memories, nil
}

func (r *PostgresRepository) DeleteMemory(ctx context.Context, memoryID string) error {
	return r.db.WithContext(ctx).Where("id = ?", memoryID).Delete(&contentdomain.Memory{}).Error
}

func (r *PostgresRepository) CreateNotifications(ctx context.Context, rows []notifdomain.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
