package dto

import "github.com/Marco3041/linkedin-clone/internal/entity"

type CreatePostRequest struct {
	Message      string `json:"message" binding:"required,max=3000"`
	PostImageURL string `json:"postImageUrl" binding:"omitempty,url"`
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

type FeedFilter struct {
	SearchQuery string `form:"q"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Comment thread states of an expanded FeedItem.
const (
	ThreadLoading     = "loading"
	ThreadLive        = "live"
	ThreadUnavailable = "unavailable"
)

// FeedItem is one rendered post. Comments and CommentsState are only set
// for posts whose thread is expanded.
type FeedItem struct {
	entity.Post
	LikeCount     int              `json:"likeCount"`
	LikedByMe     bool             `json:"likedByMe"`
	Expanded      bool             `json:"expanded"`
	CommentsState string           `json:"commentsState,omitempty"`
	CommentsError string           `json:"commentsError,omitempty"`
	Comments      []entity.Comment `json:"comments,omitempty"`
}

type LikeResponse struct {
	PostID string `json:"postId"`
	Liked  bool   `json:"liked"`
}
