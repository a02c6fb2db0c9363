package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/internal/identity"
	"github.com/Marco3041/linkedin-clone/internal/modules/user/dto"
)

// AuthService is the identity provider. The local driver keeps credentials
// in the document store and issues its own tokens; the Firebase driver
// delegates both to Firebase Auth.
type AuthService interface {
	SignUp(ctx context.Context, input dto.SignUpInput) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, input dto.SignInInput) (*dto.AuthResponse, error)
	// SignOut invalidates token for every later Verify.
	SignOut(ctx context.Context, token string) error
	// Verify returns the uid a bearer token was issued to.
	Verify(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, uid string) (*identity.Identity, error)
}

// writeProfile creates or refreshes the public user document of a new
// account.
func writeProfile(ctx context.Context, store docstore.Store, uid string, input dto.SignUpInput) error {
	err := store.SetMerge(ctx, entity.UserPath(uid), map[string]any{
		"name":                  strings.TrimSpace(input.Name),
		"email":                 normalizeEmail(input.Email),
		"photoUrl":              input.PhotoURL,
		entity.FieldConnections: []any{},
	})
	if err != nil {
		return fmt.Errorf("write profile of %s: %w", uid, err)
	}
	return nil
}

// loadIdentity reads the user document of uid. Accounts whose document is
// gone still resolve, with only the uid set.
func loadIdentity(ctx context.Context, store docstore.Store, uid string) (*identity.Identity, error) {
	doc, err := store.Get(ctx, entity.UserPath(uid))
	if errors.Is(err, docstore.ErrNotFound) {
		return &identity.Identity{UID: uid}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", uid, err)
	}
	u := entity.UserFromDocument(*doc)
	return &identity.Identity{UID: uid, Name: u.Name, Email: u.Email, PhotoURL: u.PhotoURL}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
