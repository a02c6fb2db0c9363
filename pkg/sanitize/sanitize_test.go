package sanitize

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestText(t *testing.T) {
	assert.Equal(t, "hello world", Text("  <b>hello</b> <script>alert(1)</script>world "))
	assert.Equal(t, "Tom & Jerry", Text("Tom &amp; Jerry"))
	assert.Equal(t, "line one\nline two", Text("line one\nline two"))
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "first second third", Flatten("<p>first</p><p>second</p>\n\tthird"))
}
