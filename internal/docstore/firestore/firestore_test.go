package firestore

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/go-playground/assert/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/docstoretest"
)

func TestContract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "linkedin-clone-test")
	assert.Equal(t, nil, err)
	s := New(client)
	defer s.Close()
	docstoretest.Run(t, s)
}

func TestEncodeServerTimestamp(t *testing.T) {
	out := encode(map[string]any{
		"text":      "hello",
		"timestamp": docstore.ServerTimestamp,
		"meta":      map[string]any{"at": docstore.ServerTimestamp},
	})
	assert.Equal(t, "hello", out["text"])
	assert.Equal(t, firestore.ServerTimestamp, out["timestamp"])
	assert.Equal(t, firestore.ServerTimestamp, out["meta"].(map[string]any)["at"])
}

func TestMapError(t *testing.T) {
	assert.Equal(t, nil, mapError(nil))
	assert.Equal(t, true, errors.Is(mapError(status.Error(codes.NotFound, "x")), docstore.ErrNotFound))
	assert.Equal(t, true, errors.Is(mapError(status.Error(codes.AlreadyExists, "x")), docstore.ErrAlreadyExists))
	assert.Equal(t, true, errors.Is(mapError(status.Error(codes.PermissionDenied, "x")), docstore.ErrPermissionDenied))
	assert.Equal(t, true, errors.Is(mapError(status.Error(codes.Unavailable, "x")), docstore.ErrUnavailable))
	assert.Equal(t, context.Canceled, mapError(status.Error(codes.Canceled, "x")))
}
