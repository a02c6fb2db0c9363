package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/internal/identity"
	"github.com/Marco3041/linkedin-clone/internal/modules/user/dto"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

var errInvalidCredentials = &apperror.AppError{
	Code:    http.StatusUnauthorized,
	Message: "invalid credentials",
	Err:     apperror.ErrUnauthorized,
}

type localAuthService struct {
	store      docstore.Store
	revoked    RevocationList
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
}

func NewLocalAuthService(store docstore.Store, revoked RevocationList, secret string, tokenTTL time.Duration) AuthService {
	return &localAuthService{
		store:      store,
		revoked:    revoked,
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func credentialPath(email string) string {
	return docstore.Doc(entity.CollectionCredentials, normalizeEmail(email))
}

func (s *localAuthService) SignUp(ctx context.Context, input dto.SignUpInput) (*dto.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uid := uuid.NewString()
	err = s.store.Create(ctx, credentialPath(input.Email), map[string]any{
		"uid":          uid,
		"passwordHash": string(hashed),
	})
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return nil, &apperror.AppError{Code: http.StatusConflict, Message: "email already registered", Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", input.Email, err)
	}

	if err := writeProfile(ctx, s.store, uid, input); err != nil {
		// Without its profile the account is unusable; free the email for
		// another attempt.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), credentialPath(input.Email)); delErr != nil {
			log.Printf("⚠️ credential of %s left without profile: %v", normalizeEmail(input.Email), delErr)
		}
		return nil, err
	}
	return s.buildAuthResponse(ctx, uid)
}

func (s *localAuthService) SignIn(ctx context.Context, input dto.SignInInput) (*dto.AuthResponse, error) {
	doc, err := s.store.Get(ctx, credentialPath(input.Email))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	cred := entity.CredentialFromDocument(*doc)
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.buildAuthResponse(ctx, cred.UID)
}

func (s *localAuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *localAuthService) Verify(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return "", &apperror.AppError{Code: http.StatusUnauthorized, Message: "token has been revoked", Err: apperror.ErrSignedOut}
	}
	return claims.Subject, nil
}

func (s *localAuthService) Me(ctx context.Context, uid string) (*identity.Identity, error) {
	return loadIdentity(ctx, s.store, uid)
}

func (s *localAuthService) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, &apperror.AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token", Err: apperror.ErrUnauthorized}
	}
	return claims, nil
}

func (s *localAuthService) buildAuthResponse(ctx context.Context, uid string) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(uid)
	if err != nil {
		return nil, err
	}
	me, err := loadIdentity(ctx, s.store, uid)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        me,
	}, nil
}

func (s *localAuthService) generateToken(uid string) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   uid,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.Unix(), nil
}
