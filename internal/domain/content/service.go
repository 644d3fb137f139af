package content

import (
	"context"
	"fmt"
	"strings"

	familydomain "fambook-go/internal/domain/family"
	"fambook-go/pkg/logger"
	"github.com/google/uuid"
)

type FamilyAccess interface {
	RequireMember(ctx context.Context, userID, familyID string) (*familydomain.FamilyMember, error)
	RequireAdmin(ctx context.Context, userID, familyID string) (*familydomain.FamilyMember, error)
	ApprovedMembers(ctx context.Context, familyID string) ([]familydomain.MemberProfile, error)
}

type Service struct {
	repo              Repository
	access            FamilyAccess
	storage           MediaStorage
	log               logger.Logger
	maxFileBytes      int64
	defaultAlbumLimit int
}

func NewService(repo Repository, access FamilyAccess, storage MediaStorage, log logger.Logger, maxFileBytes int64, defaultAlbumLimit int) *Service {
	if maxFileBytes <= 0 {
		maxFileBytes = 32 << 20
	}
	if defaultAlbumLimit <= 0 {
		defaultAlbumLimit = 50
	}
	return &Service{
		repo:              repo,
		access:            access,
		storage:           storage,
		log:               log,
		maxFileBytes:      maxFileBytes,
		defaultAlbumLimit: defaultAlbumLimit,
	}
}

// CreatePost publishes a post with optional media files. Files go to storage
// first; the post and its media rows commit in one transaction.
func (s *Service) CreatePost(ctx context.Context, userID, familyID, text string, files []UploadFile) (*Post, []Media, error) {
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" && len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: post needs text or media", ErrInvalidInput)
	}
	if len(text) > PostTextMaxLength {
		return nil, nil, fmt.Errorf("%w: text must be at most %d characters", ErrInvalidInput, PostTextMaxLength)
	}

	post := Post{
		ID:       uuid.NewString(),
		FamilyID: familyID,
		UserID:   userID,
		Text:     text,
	}

	rows, uploadedKeys, err := s.uploadFiles(ctx, userID, "posts/"+post.ID, files)
	if err != nil {
		return nil, nil, err
	}
	for i := range rows {
		postID := post.ID
		rows[i].PostID = &postID
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreatePost(ctx, &post); err != nil {
			return err
		}
		if len(rows) > 0 {
			return tx.CreateMedia(ctx, rows)
		}
		return nil
	})
	if err != nil {
		s.cleanupKeys(ctx, uploadedKeys)
		return nil, nil, err
	}

	return &post, rows, nil
}

func (s *Service) GetPost(ctx context.Context, userID, postID string) (*FeedPost, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, post.FamilyID); err != nil {
		return nil, err
	}

	return s.repo.GetFeedPost(ctx, userID, postID)
}

func (s *Service) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != userID {
		if _, err := s.access.RequireAdmin(ctx, userID, post.FamilyID); err != nil {
			return err
		}
	} else if _, err := s.access.RequireMember(ctx, userID, post.FamilyID); err != nil {
		return err
	}

	media, err := s.repo.ListPostMedia(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return err
	}

	keys := make([]string, 0, len(media))
	for _, m := range media {
		keys = append(keys, m.StorageKey)
	}
	s.cleanupKeys(ctx, keys)
	return nil
}

// Feed lists posts across the caller's approved families, filtered and
// annotated per the query.
func (s *Service) Feed(ctx context.Context, userID string, q FeedQuery) ([]FeedPost, error) {
	if q.FamilyID != "" {
		if _, err := s.access.RequireMember(ctx, userID, q.FamilyID); err != nil {
			return nil, err
		}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	switch q.SortOrder {
	case SortNewest, SortOldest:
	default:
		q.SortOrder = SortNewest
	}
	switch q.Filter {
	case FilterAll, FilterPhotos, FilterVideos:
	default:
		q.Filter = FilterAll
	}
	q.Search = strings.TrimSpace(q.Search)

	return s.repo.ListFeed(ctx, userID, q)
}

func (s *Service) uploadFiles(ctx context.Context, userID, keyPrefix string, files []UploadFile) ([]Media, []string, error) {
	rows := make([]Media, 0, len(files))
	uploaded := make([]string, 0, len(files))

	for _, file := range files {
		mediaType, err := mediaTypeFor(file.ContentType)
		if err != nil {
			s.cleanupKeys(ctx, uploaded)
			return nil, nil, err
		}
		if file.Size > s.maxFileBytes {
			s.cleanupKeys(ctx, uploaded)
			return nil, nil, ErrFileTooLarge
		}

		key := fmt.Sprintf("%s/%s_%s", keyPrefix, uuid.NewString(), sanitizeFilename(file.Name))
		url, err := s.storage.Upload(ctx, key, file.ContentType, file.Size, file.Body)
		if err != nil {
			s.cleanupKeys(ctx, uploaded)
			return nil, nil, fmt.Errorf("%w: %v", ErrStorageUpload, err)
		}
		uploaded = append(uploaded, key)

		rows = append(rows, Media{
			ID:           uuid.NewString(),
			Type:         mediaType,
			URL:          url,
			StorageKey:   key,
			UploadedByID: userID,
		})
	}

	return rows, uploaded, nil
}

// cleanupKeys is the compensating path for the non-atomic upload-then-record
// sequence: bytes already stored are removed best-effort when the recording
// transaction fails.
func (s *Service) cleanupKeys(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.Warn("content: storage cleanup failed", "key", key, "err", err)
		}
	}
}

func mediaTypeFor(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaPhoto, nil
	case strings.HasPrefix(contentType, "video/"):
		return MediaVideo, nil
	default:
		return "", ErrUnsupportedMediaType
	}
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" {
		name = "file"
	}
	return name
}
