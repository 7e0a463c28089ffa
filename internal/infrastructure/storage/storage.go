// Package storage keeps uploaded resume binaries, keyed by their stored file name.
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/Sooraj-Rao/college-resume-project/pkg/config"
)

var ErrNotFound = errors.New("file not found")

// Store is the binary side of a resume. Metadata lives in the database and
// the two are not written transactionally.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) error
	// Open returns ErrNotFound when the object is missing.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Delete succeeds when the object is already gone.
	Delete(ctx context.Context, name string) error
}

// New picks the backend named in the storage config.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	if cfg.Driver == "s3" {
		return NewS3Store(ctx, cfg)
	}
	return NewLocalStore(cfg.LocalDir)
}
