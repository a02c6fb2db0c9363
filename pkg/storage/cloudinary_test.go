package storage

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestPublicID(t *testing.T) {
	assert.Equal(t, "linkedin/posts/abc", PublicID("https://res.cloudinary.com/demo/image/upload/v1712/linkedin/posts/abc.webp"))
	assert.Equal(t, "avatars/me", PublicID("https://res.cloudinary.com/demo/image/upload/avatars/me.png"))
	assert.Equal(t, "videos/clip", PublicID("https://res.cloudinary.com/demo/image/upload/videos/clip.mp4"))
	assert.Equal(t, "", PublicID("https://example.com/no/upload-segment.png"))
	assert.Equal(t, "", PublicID("https://res.cloudinary.com/demo/image/upload/"))
}
