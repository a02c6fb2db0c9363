package user

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"firebase.google.com/go/v4/auth"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/identity"
	"github.com/Marco3041/linkedin-clone/internal/modules/user/dto"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

// FirebaseAuthClient is the part of the Firebase Auth admin client the
// provider uses.
type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type firebaseAuthService struct {
	client FirebaseAuthClient
	store  docstore.Store
}

// NewFirebaseAuthService verifies Firebase ID tokens. Clients sign in with
// the Firebase SDK; the server only creates accounts and checks tokens.
func NewFirebaseAuthService(client FirebaseAuthClient, store docstore.Store) AuthService {
	return &firebaseAuthService{client: client, store: store}
}

func (s *firebaseAuthService) SignUp(ctx context.Context, input dto.SignUpInput) (*dto.AuthResponse, error) {
	params := (&auth.UserToCreate{}).
		Email(normalizeEmail(input.Email)).
		Password(input.Password).
		DisplayName(input.Name)
	if input.PhotoURL != "" {
		params = params.PhotoURL(input.PhotoURL)
	}

	record, err := s.client.CreateUser(ctx, params)
	if auth.IsEmailAlreadyExists(err) {
		return nil, &apperror.AppError{Code: http.StatusConflict, Message: "email already registered", Err: apperror.ErrConflict}
	}
	if err != nil {
		return nil, fmt.Errorf("create firebase user: %w", err)
	}

	if err := writeProfile(ctx, s.store, record.UID, input); err != nil {
		if delErr := s.client.DeleteUser(context.WithoutCancel(ctx), record.UID); delErr != nil {
			log.Printf("⚠️ firebase user %s left without profile: %v", record.UID, delErr)
		}
		return nil, err
	}
	me, err := loadIdentity(ctx, s.store, record.UID)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: me}, nil
}

func (s *firebaseAuthService) SignIn(context.Context, dto.SignInInput) (*dto.AuthResponse, error) {
	return nil, &apperror.AppError{
		Code:    http.StatusBadRequest,
		Message: "sign in with the Firebase client SDK and send its ID token",
		Err:     apperror.ErrBadRequest,
	}
}

func (s *firebaseAuthService) SignOut(ctx context.Context, token string) error {
	uid, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := s.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke tokens of %s: %w", uid, err)
	}
	return nil
}

func (s *firebaseAuthService) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := s.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		if auth.IsIDTokenRevoked(err) {
			return "", &apperror.AppError{Code: http.StatusUnauthorized, Message: "token has been revoked", Err: apperror.ErrSignedOut}
		}
		return "", &apperror.AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token", Err: apperror.ErrUnauthorized}
	}
	return decoded.UID, nil
}

func (s *firebaseAuthService) Me(ctx context.Context, uid string) (*identity.Identity, error) {
	return loadIdentity(ctx, s.store, uid)
}
