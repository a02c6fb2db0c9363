package handler

import (
	"net/http"

	media "github.com/Marco3041/linkedin-clone/internal/modules/media/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	service media.MediaService
}

func NewMediaHandler(service media.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	resp, err := h.service.Upload(c.Request.Context(), userID, "posts", file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Created(c, resp)
}
