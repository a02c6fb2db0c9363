// Package storage uploads user media (profile photos, post images) and hands
// back the public URL that documents reference.
package storage

import (
	"context"
	"io"
)

type MediaStorage interface {
	// Upload stores the object and returns its public https URL.
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}
