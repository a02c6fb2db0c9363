package dto

import "github.com/Marco3041/linkedin-clone/internal/identity"

type SignUpInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	PhotoURL string `json:"photoUrl" binding:"omitempty,url"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string             `json:"access_token,omitempty"`
	TokenType   string             `json:"token_type,omitempty"`
	ExpiresIn   int64              `json:"expires_in,omitempty"`
	User        *identity.Identity `json:"user"`
}
