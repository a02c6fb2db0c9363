package dto

import "io"

// AvatarFile is the profile photo uploaded alongside an edit.
type AvatarFile struct {
	Reader      io.Reader
	FileName    string
	ContentType string
}

// UpdateProfileInput carries only the fields being edited; nil fields are
// left as stored.
type UpdateProfileInput struct {
	Name       *string `json:"name" form:"name" binding:"omitempty,max=100"`
	Bio        *string `json:"bio" form:"bio" binding:"omitempty,max=2000"`
	Skills     *string `json:"skills" form:"skills" binding:"omitempty,max=1000"`
	Experience *string `json:"experience" form:"experience" binding:"omitempty,max=2000"`
}
