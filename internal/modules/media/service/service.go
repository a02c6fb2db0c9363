package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	mediaDto "github.com/Marco3041/linkedin-clone/internal/modules/media/dto"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
	"github.com/Marco3041/linkedin-clone/pkg/storage"
)

// MaxUploadSize bounds a single upload.
const MaxUploadSize = 5 << 20

var errNoStorage = apperror.New(http.StatusServiceUnavailable, "media storage is not configured", apperror.ErrUnavailable)

type MediaService interface {
	// Upload stores an image for userID under folder and records it.
	Upload(ctx context.Context, userID, folder string, file *multipart.FileHeader) (*mediaDto.UploadMediaResponse, error)
	UploadReader(ctx context.Context, userID, folder string, r io.Reader, fileName, contentType string) (*mediaDto.UploadMediaResponse, error)
	// CleanupOrphans deletes uploads older than age that no post or profile
	// references, returning how many were removed.
	CleanupOrphans(ctx context.Context, age time.Duration) (int, error)
}

type mediaService struct {
	store       docstore.Store
	fileStorage storage.MediaStorage
}

// NewMediaService accepts a nil fileStorage; uploads then fail with 503.
func NewMediaService(store docstore.Store, fileStorage storage.MediaStorage) MediaService {
	return &mediaService{store: store, fileStorage: fileStorage}
}

func (s *mediaService) Upload(ctx context.Context, userID, folder string, file *multipart.FileHeader) (*mediaDto.UploadMediaResponse, error) {
	if file.Size > MaxUploadSize {
		return nil, fmt.Errorf("%w: file is larger than %d bytes", apperror.ErrInvalidInput, MaxUploadSize)
	}
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read upload", apperror.ErrBadRequest)
	}
	defer f.Close()

	return s.UploadReader(ctx, userID, folder, f, file.Filename, file.Header.Get("Content-Type"))
}

func (s *mediaService) UploadReader(ctx context.Context, userID, folder string, r io.Reader, fileName, contentType string) (*mediaDto.UploadMediaResponse, error) {
	if s.fileStorage == nil {
		return nil, errNoStorage
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: only images can be uploaded", apperror.ErrInvalidInput)
	}

	url, err := s.fileStorage.Upload(ctx, r, folder, fileName)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}

	id, err := s.store.Insert(ctx, entity.CollectionMedia, map[string]any{
		entity.FieldUserID:    userID,
		"url":                 url,
		"contentType":         contentType,
		entity.FieldTimestamp: docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	return &mediaDto.UploadMediaResponse{ID: id, FileURL: url, FileType: contentType}, nil
}

func (s *mediaService) CleanupOrphans(ctx context.Context, age time.Duration) (int, error) {
	if s.fileStorage == nil {
		return 0, errNoStorage
	}
	cutoff := time.Now().Add(-age)

	docs, err := s.store.Query(ctx, docstore.Query{Collection: entity.CollectionMedia})
	if err != nil {
		return 0, fmt.Errorf("list media: %w", err)
	}

	removed := 0
	for _, doc := range docs {
		m := entity.MediaFromDocument(doc)
		if m.Deleted || m.Timestamp.After(cutoff) {
			continue
		}
		used, err := s.referenced(ctx, m.URL)
		if err != nil {
			return removed, err
		}
		if used {
			continue
		}

		if err := s.fileStorage.Delete(ctx, m.URL); err != nil {
			log.Printf("⚠️ failed to delete orphan media %s: %v", m.ID, err)
			continue
		}
		if err := s.store.SetMerge(ctx, doc.Path, map[string]any{"deletedAt": docstore.ServerTimestamp}); err != nil {
			return removed, fmt.Errorf("mark media %s deleted: %w", m.ID, err)
		}
		removed++
	}
	return removed, nil
}

func (s *mediaService) referenced(ctx context.Context, url string) (bool, error) {
	refs := []docstore.Query{
		{Collection: entity.CollectionPosts, Filters: []docstore.Filter{docstore.Where("postImageUrl", url)}, Limit: 1},
		{Collection: entity.CollectionUsers, Filters: []docstore.Filter{docstore.Where("photoUrl", url)}, Limit: 1},
	}
	for _, q := range refs {
		docs, err := s.store.Query(ctx, q)
		if err != nil {
			return false, fmt.Errorf("check references of %s: %w", url, err)
		}
		if len(docs) > 0 {
			return true, nil
		}
	}
	return false, nil
}
