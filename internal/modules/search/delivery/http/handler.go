package handler

import (
	"net/http"
	"strconv"
	"strings"

	search "github.com/Marco3041/linkedin-clone/internal/modules/search/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchService
}

func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) SearchPosts(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	posts, err := h.service.SearchPosts(c.Request.Context(), term, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, posts)
}
