package dto

import "github.com/Marco3041/linkedin-clone/internal/entity"

type SendMessageRequest struct {
	To   string `json:"to" binding:"required"`
	Text string `json:"text" binding:"required,max=2000"`
}

type SendMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"chatId"`
}

type TranscriptResponse struct {
	ChannelID string           `json:"chatId"`
	Messages  []entity.Message `json:"messages"`
}
