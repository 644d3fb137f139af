package content

import (
	"context"
	"io"
)

// MediaStorage is the external blob-store collaborator: store bytes, get a
// public URL back. Uploads happen before the database transaction that
// records them; Delete doubles as the compensating cleanup path.
type MediaStorage interface {
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}
