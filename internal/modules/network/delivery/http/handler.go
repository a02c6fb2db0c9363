package handler

import (
	network "github.com/Marco3041/linkedin-clone/internal/modules/network/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/gin-gonic/gin"
)

type NetworkHandler struct {
	service network.NetworkService
}

func NewNetworkHandler(service network.NetworkService) *NetworkHandler {
	return &NetworkHandler{service: service}
}

func (h *NetworkHandler) GetNetwork(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	n, err := h.service.GetNetwork(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, n)
}

func (h *NetworkHandler) Connect(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Connect(c.Request.Context(), userID, c.Param("user_id")); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, gin.H{"connected": true})
}
