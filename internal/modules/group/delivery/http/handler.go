package handler

import (
	group "github.com/Marco3041/linkedin-clone/internal/modules/group/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	service group.GroupService
}

func NewGroupHandler(service group.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	groups, err := h.service.ListGroups(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, groups)
}

func (h *GroupHandler) Join(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Join(c.Request.Context(), userID, c.Param("group_id")); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, gin.H{"joined": true})
}
