package handler

import (
	"net/http"

	"github.com/Marco3041/linkedin-clone/internal/modules/user/dto"
	user "github.com/Marco3041/linkedin-clone/internal/modules/user/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/Marco3041/linkedin-clone/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service   user.AuthService
	onSignOut func(uid string)
}

// NewAuthHandler builds the auth endpoints. onSignOut, when set, is told
// about every successful sign-out so live sessions of the user can end.
func NewAuthHandler(service user.AuthService, onSignOut func(uid string)) *AuthHandler {
	return &AuthHandler{service: service, onSignOut: onSignOut}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var input dto.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var input dto.SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.SignIn(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.SignOut(c.Request.Context(), c.GetString("token")); err != nil {
		response.ResponseError(c, err)
		return
	}
	if h.onSignOut != nil {
		h.onSignOut(userID)
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	me, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, me)
}
