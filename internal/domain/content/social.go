package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fambook-go/internal/domain/notification"
	"github.com/google/uuid"
)

func (s *Service) AddComment(ctx context.Context, userID, userName, postID, text string) (*Comment, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, post.FamilyID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if len(text) < CommentMinLength || len(text) > CommentMaxLength {
		return nil, fmt.Errorf("%w: comment must be %d-%d characters", ErrInvalidInput, CommentMinLength, CommentMaxLength)
	}

	comment := Comment{
		ID:      uuid.NewString(),
		PostID:  postID,
		UserID:  userID,
		Content: text,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateComment(ctx, &comment); err != nil {
			return err
		}
		if post.UserID == userID {
			return nil
		}
		return tx.CreateNotifications(ctx, []notification.Notification{
			notification.CommentAdded(post.UserID, userName),
		})
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *Service) ListComments(ctx context.Context, userID, postID string, page, limit int) ([]CommentView, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, post.FamilyID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListComments(ctx, postID, (page-1)*limit, limit)
}

func (s *Service) UpdateComment(ctx context.Context, userID, commentID, text string) (*Comment, error) {
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotAuthor
	}

	text = strings.TrimSpace(text)
	if len(text) < CommentMinLength || len(text) > CommentMaxLength {
		return nil, fmt.Errorf("%w: comment must be %d-%d characters", ErrInvalidInput, CommentMinLength, CommentMaxLength)
	}

	comment.Content = text
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotAuthor
	}
	return s.repo.DeleteComment(ctx, commentID)
}

// ToggleLike flips the like state in one transaction so the existence check
// and the mutation cannot interleave with a concurrent toggle.
func (s *Service) ToggleLike(ctx context.Context, userID, userName, postID string) (bool, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if _, err := s.access.RequireMember(ctx, userID, post.FamilyID); err != nil {
		return false, err
	}

	liked := false
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.GetLike(ctx, postID, userID)
		if err == nil {
			return tx.DeleteLike(ctx, existing.ID)
		}
		if !errors.Is(err, ErrLikeNotFound) {
			return err
		}

		like := Like{
			ID:     uuid.NewString(),
			PostID: postID,
			UserID: userID,
		}
		if err := tx.CreateLike(ctx, &like); err != nil {
			return err
		}
		liked = true

		if post.UserID == userID {
			return nil
		}
		return tx.CreateNotifications(ctx, []notification.Notification{
			notification.PostLiked(post.UserID, userName),
		})
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

func (s *Service) ListLikes(ctx context.Context, userID, postID string) ([]LikeView, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, post.FamilyID); err != nil {
		return nil, err
	}
	return s.repo.ListLikes(ctx, postID)
}

// CreateMemory bookmarks exactly one of an album or a post for the caller.
func (s *Service) CreateMemory(ctx context.Context, userID string, albumID, postID *string) (*Memory, error) {
	albumID = normalizeTarget(albumID)
	postID = normalizeTarget(postID)
	if (albumID == nil) == (postID == nil) {
		return nil, ErrMemoryTargetInvalid
	}

	var familyID string
	if albumID != nil {
		album, err := s.repo.GetAlbum(ctx, *albumID)
		if err != nil {
			return nil, err
		}
		familyID = album.FamilyID
	} else {
		post, err := s.repo.GetPost(ctx, *postID)
		if err != nil {
			return nil, err
		}
		familyID = post.FamilyID
	}
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}

	var result Memory
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.FindMemory(ctx, userID, albumID, postID)
		if err != nil && !errors.Is(err, ErrMemoryNotFound) {
			return err
		}
		if existing != nil {
			return ErrMemoryExists
		}

		memory := Memory{
			ID:      uuid.NewString(),
			UserID:  userID,
			AlbumID: albumID,
			PostID:  postID,
		}
		if err := tx.CreateMemory(ctx, &memory); err != nil {
			return err
		}
		result = memory
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) ListMemories(ctx context.Context, userID string) ([]Memory, error) {
	return s.repo.ListMemories(ctx, userID)
}

func (s *Service) DeleteMemory(ctx context.Context, userID, memoryID string) error {
	memory, err := s.repo.GetMemory(ctx, memoryID)
	if err != nil {
		return err
	}
	if memory.UserID != userID {
		return ErrNotOwner
	}
	return s.repo.DeleteMemory(ctx, memoryID)
}

func normalizeTarget(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
