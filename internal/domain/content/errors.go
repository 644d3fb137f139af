package content

import "errors"

var (
	ErrPostNotFound         = errors.New("post not found")
	ErrAlbumNotFound        = errors.New("album not found")
	ErrMediaNotFound        = errors.New("media not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrLikeNotFound         = errors.New("like not found")
	ErrMemoryNotFound       = errors.New("memory not found")
	ErrNotAuthor            = errors.New("not the author")
	ErrNotOwner             = errors.New("not the owner")
	ErrMediaLimitExceeded   = errors.New("album media limit exceeded")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file exceeds size limit")
	ErrMemoryTargetInvalid  = errors.New("exactly one of albumId or postId is required")
	ErrMemoryExists         = errors.New("memory already exists")
	ErrStorageUpload        = errors.New("media storage upload failed")
	ErrInvalidInput         = errors.New("invalid input")
)
