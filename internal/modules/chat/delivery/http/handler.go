package handler

import (
	"net/http"

	chatDto "github.com/Marco3041/linkedin-clone/internal/modules/chat/dto"
	chat "github.com/Marco3041/linkedin-clone/internal/modules/chat/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/Marco3041/linkedin-clone/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service chat.ChatService
}

func NewChatHandler(service chat.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req chatDto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	id, err := h.service.SendMessage(c.Request.Context(), userID, req.To, req.Text)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	channelID, _ := chat.ChannelID(userID, req.To)
	response.Created(c, chatDto.SendMessageResponse{ID: id, ChannelID: channelID})
}

func (h *ChatHandler) GetTranscript(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	peerID := c.Param("peer_id")
	messages, err := h.service.Transcript(c.Request.Context(), userID, peerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	channelID, _ := chat.ChannelID(userID, peerID)
	response.OK(c, chatDto.TranscriptResponse{ChannelID: channelID, Messages: messages})
}

func (h *ChatHandler) GetConnections(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	users, err := h.service.Connections(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, users)
}
