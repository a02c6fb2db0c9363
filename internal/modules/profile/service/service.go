package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	media "github.com/Marco3041/linkedin-clone/internal/modules/media/service"
	profileDto "github.com/Marco3041/linkedin-clone/internal/modules/profile/dto"
	"github.com/Marco3041/linkedin-clone/pkg/sanitize"
)

// Placeholders shown for a profile that was never edited.
const (
	DefaultBio        = "This is a bio section. You can edit this."
	DefaultSkills     = "React, JavaScript, CSS"
	DefaultExperience = "Software Engineer Intern at Google"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	// UpdateProfile merges the given fields into the user document. Posts
	// already written keep the author snapshot they were created with.
	UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*entity.User, error)
}

type profileService struct {
	store docstore.Store
	media media.MediaService
}

func NewProfileService(store docstore.Store, mediaService media.MediaService) ProfileService {
	return &profileService{store: store, media: mediaService}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	doc, err := s.store.Get(ctx, entity.UserPath(userID))
	if errors.Is(err, docstore.ErrNotFound) {
		return &entity.User{
			ID:         userID,
			Bio:        DefaultBio,
			Skills:     DefaultSkills,
			Experience: DefaultExperience,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	u := entity.UserFromDocument(*doc)
	return &u, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*entity.User, error) {
	changes := make(map[string]any)
	set := func(field string, value *string) {
		if value != nil {
			changes[field] = sanitize.Text(*value)
		}
	}
	set("name", input.Name)
	set("bio", input.Bio)
	set("skills", input.Skills)
	set("experience", input.Experience)

	if avatar != nil && avatar.Reader != nil && s.media != nil {
		uploaded, err := s.media.UploadReader(ctx, userID, "avatars", avatar.Reader, avatar.FileName, avatar.ContentType)
		if err != nil {
			return nil, err
		}
		changes["photoUrl"] = uploaded.FileURL
	}

	if len(changes) > 0 {
		if err := s.store.SetMerge(ctx, entity.UserPath(userID), changes); err != nil {
			return nil, fmt.Errorf("update profile %s: %w", userID, err)
		}
	}
	return s.GetProfile(ctx, userID)
}
