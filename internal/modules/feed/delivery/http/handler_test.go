package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	feedRepo "github.com/Marco3041/linkedin-clone/internal/modules/feed/repository"
	feed "github.com/Marco3041/linkedin-clone/internal/modules/feed/service"
	membership "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"
	"github.com/Marco3041/linkedin-clone/pkg/ratelimiter"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })

	svc := feed.NewFeedService(feedRepo.NewPostRepository(store), store, membership.NewMembershipService(store), ratelimiter.New(nil), time.Minute, nil)
	h := NewFeedHandler(svc)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Next()
	})
	r.GET("/api/posts", h.GetFeed)
	r.POST("/api/posts", h.CreatePost)
	r.POST("/api/posts/:post_id/like", h.ToggleLike)
	r.POST("/api/posts/:post_id/comments", h.AddComment)
	r.GET("/api/posts/:post_id/comments", h.GetComments)
	return r
}

func do(r *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	r.ServeHTTP(w, req)
	return w
}

func TestPostLikeAndComment(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/posts", "u1", `{"message":"hello"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &created))
	postID := created.Data.ID

	w = do(r, http.MethodPost, "/api/posts/"+postID+"/like", "u2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"liked":true`))

	w = do(r, http.MethodPost, "/api/posts/"+postID+"/comments", "u2", `{"text":"nice"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/posts", "u2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Data []struct {
			ID        string `json:"id"`
			LikeCount int    `json:"likeCount"`
			LikedByMe bool   `json:"likedByMe"`
		} `json:"data"`
	}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, 1, len(listed.Data))
	assert.Equal(t, 1, listed.Data[0].LikeCount)
	assert.Equal(t, true, listed.Data[0].LikedByMe)

	w = do(r, http.MethodGet, "/api/posts/"+postID+"/comments", "u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"text":"nice"`))
}

func TestCreatePostValidation(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/posts", "u1", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Message is required"))

	w = do(r, http.MethodPost, "/api/posts", "u1", `{"message":"hi","postImageUrl":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/posts", "", `{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLikeUnknownPost(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodPost, "/api/posts/missing/like", "u1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
