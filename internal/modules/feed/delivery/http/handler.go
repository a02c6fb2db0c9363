package handler

import (
	"errors"
	"fmt"
	"net/http"

	feedDto "github.com/Marco3041/linkedin-clone/internal/modules/feed/dto"
	feed "github.com/Marco3041/linkedin-clone/internal/modules/feed/service"
	"github.com/Marco3041/linkedin-clone/pkg/ratelimiter"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/Marco3041/linkedin-clone/pkg/validator"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	service feed.FeedService
}

func NewFeedHandler(service feed.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req feedDto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}
	response.Created(c, post)
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter feedDto.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	items, err := h.service.GetFeed(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, items)
}

func (h *FeedHandler) ToggleLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ToggleLike(c.Request.Context(), userID, c.Param("post_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *FeedHandler) AddComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req feedDto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), userID, c.Param("post_id"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Created(c, comment)
}

func (h *FeedHandler) GetComments(c *gin.Context) {
	comments, err := h.service.GetComments(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, comments)
}
