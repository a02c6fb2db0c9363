package user

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-playground/assert/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/internal/modules/user/dto"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

func newLocal(t *testing.T) (*memstore.Store, AuthService) {
	t.Helper()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })

	svc := NewLocalAuthService(store, NewRevocationList(nil), "test-secret", time.Hour)
	svc.(*localAuthService).bcryptCost = bcrypt.MinCost
	return store, svc
}

var ada = dto.SignUpInput{Name: "Ada", Email: "Ada@Example.com ", Password: "s3cret!", PhotoURL: "https://img.example.com/ada.png"}

func TestSignUpWritesProfile(t *testing.T) {
	ctx := context.Background()
	store, svc := newLocal(t)

	resp, err := svc.SignUp(ctx, ada)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEqual(t, "", resp.AccessToken)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	doc, err := store.Get(ctx, entity.UserPath(resp.User.UID))
	assert.Equal(t, nil, err)
	u := entity.UserFromDocument(*doc)
	assert.Equal(t, "https://img.example.com/ada.png", u.PhotoURL)
	assert.Equal(t, 0, len(u.Connections))
	_, isArray := doc.Data[entity.FieldConnections].([]any)
	assert.Equal(t, true, isArray)

	uid, err := svc.Verify(ctx, resp.AccessToken)
	assert.Equal(t, nil, err)
	assert.Equal(t, resp.User.UID, uid)
}

func TestSignUpTwiceConflicts(t *testing.T) {
	_, svc := newLocal(t)
	_, err := svc.SignUp(context.Background(), ada)
	assert.Equal(t, nil, err)

	_, err = svc.SignUp(context.Background(), dto.SignUpInput{Name: "Other", Email: "ada@example.com", Password: "whatever"})
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
}

func TestSignUpWithoutProfileFreesTheEmail(t *testing.T) {
	ctx := context.Background()
	store, svc := newLocal(t)

	store.SetFault(entity.CollectionUsers, memstore.FaultWrite, docstore.ErrUnavailable)
	_, err := svc.SignUp(ctx, ada)
	assert.Equal(t, true, errors.Is(err, docstore.ErrUnavailable))
	_, err = store.Get(ctx, credentialPath(ada.Email))
	assert.Equal(t, true, errors.Is(err, docstore.ErrNotFound))

	store.SetFault(entity.CollectionUsers, memstore.FaultWrite, nil)
	resp, err := svc.SignUp(ctx, ada)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Ada", resp.User.Name)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	_, svc := newLocal(t)
	created, err := svc.SignUp(ctx, ada)
	assert.Equal(t, nil, err)

	resp, err := svc.SignIn(ctx, dto.SignInInput{Email: "ada@example.com", Password: "s3cret!"})
	assert.Equal(t, nil, err)
	assert.Equal(t, created.User.UID, resp.User.UID)

	_, err = svc.SignIn(ctx, dto.SignInInput{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, true, errors.Is(err, apperror.ErrUnauthorized))

	_, err = svc.SignIn(ctx, dto.SignInInput{Email: "nobody@example.com", Password: "s3cret!"})
	assert.Equal(t, true, errors.Is(err, apperror.ErrUnauthorized))
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	_, svc := newLocal(t)
	resp, err := svc.SignUp(ctx, ada)
	assert.Equal(t, nil, err)

	other, err := svc.SignIn(ctx, dto.SignInInput{Email: ada.Email, Password: ada.Password})
	assert.Equal(t, nil, err)

	assert.Equal(t, nil, svc.SignOut(ctx, resp.AccessToken))
	_, err = svc.Verify(ctx, resp.AccessToken)
	assert.Equal(t, true, errors.Is(err, apperror.ErrSignedOut))
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))

	uid, err := svc.Verify(ctx, other.AccessToken)
	assert.Equal(t, nil, err)
	assert.Equal(t, resp.User.UID, uid)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	store, svc := newLocal(t)
	resp, err := svc.SignUp(context.Background(), ada)
	assert.Equal(t, nil, err)

	foreign := NewLocalAuthService(store, NewRevocationList(nil), "another-secret", time.Hour)
	_, err = foreign.Verify(context.Background(), resp.AccessToken)
	assert.Equal(t, true, errors.Is(err, apperror.ErrUnauthorized))

	_, err = svc.Verify(context.Background(), "not-a-jwt")
	assert.Equal(t, true, errors.Is(err, apperror.ErrUnauthorized))
}

func TestMeWithoutProfileDocument(t *testing.T) {
	_, svc := newLocal(t)
	me, err := svc.Me(context.Background(), "u9")
	assert.Equal(t, nil, err)
	assert.Equal(t, "u9", me.UID)
	assert.Equal(t, "", me.Name)
}

func TestMemoryRevocationsExpire(t *testing.T) {
	ctx := context.Background()
	list := NewRevocationList(nil)
	assert.Equal(t, nil, list.Revoke(ctx, "t1", time.Millisecond))
	assert.Equal(t, nil, list.Revoke(ctx, "t2", time.Hour))

	time.Sleep(5 * time.Millisecond)
	revoked, err := list.IsRevoked(ctx, "t1")
	assert.Equal(t, nil, err)
	assert.Equal(t, false, revoked)
	revoked, _ = list.IsRevoked(ctx, "t2")
	assert.Equal(t, true, revoked)
}

type fakeFirebase struct {
	created []*auth.UserToCreate
	deleted []string
	revoked []string
}

func (f *fakeFirebase) CreateUser(_ context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	f.created = append(f.created, user)
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "fb-1"}}, nil
}

func (f *fakeFirebase) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeFirebase) VerifyIDTokenAndCheckRevoked(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "fb-1"}, nil
}

func (f *fakeFirebase) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func TestFirebaseProvider(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	fb := &fakeFirebase{}
	svc := NewFirebaseAuthService(fb, store)

	resp, err := svc.SignUp(ctx, ada)
	assert.Equal(t, nil, err)
	assert.Equal(t, "fb-1", resp.User.UID)
	assert.Equal(t, "", resp.AccessToken)
	assert.Equal(t, 1, len(fb.created))

	_, err = store.Get(ctx, docstore.Doc(entity.CollectionUsers, "fb-1"))
	assert.Equal(t, nil, err)

	uid, err := svc.Verify(ctx, "good")
	assert.Equal(t, nil, err)
	assert.Equal(t, "fb-1", uid)
	_, err = svc.Verify(ctx, "bad")
	assert.Equal(t, true, errors.Is(err, apperror.ErrUnauthorized))

	assert.Equal(t, nil, svc.SignOut(ctx, "good"))
	assert.Equal(t, []string{"fb-1"}, fb.revoked)

	_, err = svc.SignIn(ctx, dto.SignInInput{Email: "ada@example.com", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestFirebaseSignUpWithoutProfileDeletesTheUser(t *testing.T) {
	store := memstore.New()
	defer store.Close()
	fb := &fakeFirebase{}
	svc := NewFirebaseAuthService(fb, store)

	store.SetFault(entity.CollectionUsers, memstore.FaultWrite, docstore.ErrUnavailable)
	_, err := svc.SignUp(context.Background(), ada)
	assert.Equal(t, true, errors.Is(err, docstore.ErrUnavailable))
	assert.Equal(t, []string{"fb-1"}, fb.deleted)
}
