package content

import (
	"context"
	"fmt"
	"strings"

	"fambook-go/internal/domain/notification"
	"github.com/google/uuid"
)

func (s *Service) CreateAlbum(ctx context.Context, userID, userName, familyID, name string, description *string, mediaLimit int) (*Album, error) {
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if len(name) < AlbumNameMinLength || len(name) > AlbumNameMaxLength {
		return nil, fmt.Errorf("%w: album name must be %d-%d characters", ErrInvalidInput, AlbumNameMinLength, AlbumNameMaxLength)
	}
	if mediaLimit <= 0 {
		mediaLimit = s.defaultAlbumLimit
	}

	album := Album{
		ID:          uuid.NewString(),
		FamilyID:    familyID,
		Name:        name,
		Description: description,
		MediaLimit:  mediaLimit,
		CreatedByID: userID,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateAlbum(ctx, &album); err != nil {
			return err
		}
		rows, err := s.fanoutToFamily(ctx, familyID, userID, func(recipientID string) notification.Notification {
			return notification.AlbumCreated(recipientID, userName, album.Name)
		})
		if err != nil {
			return err
		}
		return tx.CreateNotifications(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	return &album, nil
}

func (s *Service) ListAlbums(ctx context.Context, userID, familyID string) ([]Album, error) {
	if _, err := s.access.RequireMember(ctx, userID, familyID); err != nil {
		return nil, err
	}
	return s.repo.ListAlbums(ctx, familyID)
}

func (s *Service) GetAlbum(ctx context.Context, userID, albumID string) (*Album, []Media, error) {
	album, err := s.repo.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, album.FamilyID); err != nil {
		return nil, nil, err
	}

	media, err := s.repo.ListAlbumMedia(ctx, albumID)
	if err != nil {
		return nil, nil, err
	}
	return album, media, nil
}

func (s *Service) UpdateAlbum(ctx context.Context, userID, albumID string, update AlbumUpdate) (*Album, error) {
	album, err := s.albumForManage(ctx, userID, albumID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if len(name) < AlbumNameMinLength || len(name) > AlbumNameMaxLength {
			return nil, fmt.Errorf("%w: album name must be %d-%d characters", ErrInvalidInput, AlbumNameMinLength, AlbumNameMaxLength)
		}
		album.Name = name
	}
	if update.Description != nil {
		album.Description = update.Description
	}
	if update.CoverImageURL != nil {
		album.CoverImageURL = update.CoverImageURL
	}
	if update.MediaLimit != nil {
		if *update.MediaLimit < 1 {
			return nil, fmt.Errorf("%w: media limit must be positive", ErrInvalidInput)
		}
		count, err := s.repo.CountAlbumMedia(ctx, albumID)
		if err != nil {
			return nil, err
		}
		if int64(*update.MediaLimit) < count {
			return nil, fmt.Errorf("%w: media limit below current media count", ErrInvalidInput)
		}
		album.MediaLimit = *update.MediaLimit
	}

	if err := s.repo.UpdateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *Service) DeleteAlbum(ctx context.Context, userID, albumID string) error {
	album, err := s.albumForManage(ctx, userID, albumID)
	if err != nil {
		return err
	}

	media, err := s.repo.ListAlbumMedia(ctx, album.ID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteAlbum(ctx, album.ID); err != nil {
		return err
	}

	keys := make([]string, 0, len(media))
	for _, m := range media {
		keys = append(keys, m.StorageKey)
	}
	s.cleanupKeys(ctx, keys)
	return nil
}

// UploadAlbumMedia stores a batch of files and records them atomically with
// the member notifications. The quota check covers the whole batch before a
// single byte is uploaded; a database failure triggers compensating cleanup
// of the already-stored objects.
func (s *Service) UploadAlbumMedia(ctx context.Context, userID, userName, albumID string, files []UploadFile) ([]Media, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", ErrInvalidInput)
	}

	album, err := s.repo.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, userID, album.FamilyID); err != nil {
		return nil, err
	}

	existing, err := s.repo.CountAlbumMedia(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if existing+int64(len(files)) > int64(album.MediaLimit) {
		return nil, ErrMediaLimitExceeded
	}

	rows, uploadedKeys, err := s.uploadFiles(ctx, userID, "albums/"+albumID, files)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		id := albumID
		rows[i].AlbumID = &id
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateMedia(ctx, rows); err != nil {
			return err
		}

		if album.CoverImageURL == nil {
			for _, row := range rows {
				if row.Type == MediaPhoto {
					cover := row.URL
					album.CoverImageURL = &cover
					if err := tx.UpdateAlbum(ctx, album); err != nil {
						return err
					}
					break
				}
			}
		}

		fanout, err := s.fanoutToFamily(ctx, album.FamilyID, userID, func(recipientID string) notification.Notification {
			return notification.MediaAdded(recipientID, userName, len(rows), album.Name)
		})
		if err != nil {
			return err
		}
		return tx.CreateNotifications(ctx, fanout)
	})
	if err != nil {
		s.cleanupKeys(ctx, uploadedKeys)
		return nil, err
	}

	return rows, nil
}

func (s *Service) UpdateMediaCaption(ctx context.Context, userID, albumID, mediaID string, caption *string) (*Media, error) {
	media, err := s.albumMediaForManage(ctx, userID, albumID, mediaID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMediaCaption(ctx, mediaID, caption); err != nil {
		return nil, err
	}
	media.Caption = caption
	return media, nil
}

func (s *Service) DeleteMedia(ctx context.Context, userID, albumID, mediaID string) error {
	media, err := s.albumMediaForManage(ctx, userID, albumID, mediaID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteMedia(ctx, mediaID); err != nil {
		return err
	}
	s.cleanupKeys(ctx, []string{media.StorageKey})
	return nil
}

// albumForManage authorizes album management: the album creator or a family
// admin.
func (s *Service) albumForManage(ctx context.Context, userID, albumID string) (*Album, error) {
	album, err := s.repo.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album.CreatedByID == userID {
		if _, err := s.access.RequireMember(ctx, userID, album.FamilyID); err != nil {
			return nil, err
		}
		return album, nil
	}
	if _, err := s.access.RequireAdmin(ctx, userID, album.FamilyID); err != nil {
		return nil, err
	}
	return album, nil
}

// albumMediaForManage authorizes media edits: the uploader or a family admin.
func (s *Service) albumMediaForManage(ctx context.Context, userID, albumID, mediaID string) (*Media, error) {
	album, err := s.repo.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	media, err := s.repo.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media.AlbumID == nil || *media.AlbumID != album.ID {
		return nil, ErrMediaNotFound
	}

	if media.UploadedByID == userID {
		if _, err := s.access.RequireMember(ctx, userID, album.FamilyID); err != nil {
			return nil, err
		}
		return media, nil
	}
	if _, err := s.access.RequireAdmin(ctx, userID, album.FamilyID); err != nil {
		return nil, err
	}
	return media, nil
}

// fanoutToFamily builds one notification per approved member, excluding the
// actor.
func (s *Service) fanoutToFamily(ctx context.Context, familyID, actorID string, build func(recipientID string) notification.Notification) ([]notification.Notification, error) {
	members, err := s.access.ApprovedMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	rows := make([]notification.Notification, 0, len(members))
	for _, member := range members {
		if member.UserID == actorID {
			continue
		}
		rows = append(rows, build(member.UserID))
	}
	return rows, nil
}
