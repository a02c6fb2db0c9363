package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) Upload(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://cdn.example.com/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) Delete(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func TestUploadRecordsMedia(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	fs := &fakeStorage{}
	svc := NewMediaService(store, fs)

	resp, err := svc.UploadReader(ctx, "u1", "posts", strings.NewReader("png"), "cat.png", "image/png")
	assert.Equal(t, nil, err)
	assert.Equal(t, "https://cdn.example.com/posts/cat.png", resp.FileURL)

	doc, err := store.Get(ctx, docstore.Doc(entity.CollectionMedia, resp.ID))
	assert.Equal(t, nil, err)
	m := entity.MediaFromDocument(*doc)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, "image/png", m.ContentType)

	_, err = svc.UploadReader(ctx, "u1", "posts", strings.NewReader("x"), "notes.txt", "text/plain")
	assert.Equal(t, true, errors.Is(err, apperror.ErrInvalidInput))
	assert.Equal(t, 1, len(fs.uploaded))
}

func TestUploadWithoutStorage(t *testing.T) {
	svc := NewMediaService(memstore.New(), nil)
	_, err := svc.UploadReader(context.Background(), "u1", "posts", strings.NewReader("png"), "cat.png", "image/png")
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}

func TestCleanupKeepsReferencedMedia(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	fs := &fakeStorage{}
	svc := NewMediaService(store, fs)

	used, err := svc.UploadReader(ctx, "u1", "posts", strings.NewReader("a"), "used.png", "image/png")
	assert.Equal(t, nil, err)
	avatar, err := svc.UploadReader(ctx, "u1", "avatars", strings.NewReader("b"), "me.png", "image/png")
	assert.Equal(t, nil, err)
	orphan, err := svc.UploadReader(ctx, "u1", "posts", strings.NewReader("c"), "orphan.png", "image/png")
	assert.Equal(t, nil, err)

	_, err = store.Insert(ctx, entity.CollectionPosts, map[string]any{"message": "look", "postImageUrl": used.FileURL})
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, store.SetMerge(ctx, entity.UserPath("u1"), map[string]any{"photoUrl": avatar.FileURL}))

	time.Sleep(2 * time.Millisecond)
	removed, err := svc.CleanupOrphans(ctx, time.Millisecond)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{orphan.FileURL}, fs.deleted)

	removed, err = svc.CleanupOrphans(ctx, time.Millisecond)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, removed)
}
