package membership

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

// MembershipService mutates identity sets held in array fields (likes,
// connections, group members). Every mutation is one atomic store
// operation, so concurrent writers never lose each other's updates.
type MembershipService interface {
	Add(ctx context.Context, docPath, field, identityID string) error
	Remove(ctx context.Context, docPath, field, identityID string) error
	// Toggle issues the inverse of the membership seen in observed and
	// returns the membership it intends.
	Toggle(ctx context.Context, docPath, field, identityID string, observed *docstore.Document) (bool, error)
}

type membershipService struct {
	store docstore.Store
}

func NewMembershipService(store docstore.Store) MembershipService {
	return &membershipService{store: store}
}

func validate(docPath, field, identityID string) error {
	if identityID == "" {
		return fmt.Errorf("%w: identity is required", apperror.ErrInvalidInput)
	}
	if docPath == "" || field == "" {
		return fmt.Errorf("%w: document and field are required", apperror.ErrInvalidInput)
	}
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	return nil
}

func (s *membershipService) Add(ctx context.Context, docPath, field, identityID string) error {
	if err := validate(docPath, field, identityID); err != nil {
		return err
	}
	if err := s.store.AddToSet(ctx, docPath, field, identityID); err != nil {
		return fmt.Errorf("add %s to %s.%s: %w", identityID, docPath, field, err)
	}
	return nil
}

func (s *membershipService) Remove(ctx context.Context, docPath, field, identityID string) error {
	if err := validate(docPath, field, identityID); err != nil {
		return err
	}
	if err := s.store.RemoveFromSet(ctx, docPath, field, identityID); err != nil {
		return fmt.Errorf("remove %s from %s.%s: %w", identityID, docPath, field, err)
	}
	return nil
}

func (s *membershipService) Toggle(ctx context.Context, docPath, field, identityID string, observed *docstore.Document) (bool, error) {
	if err := validate(docPath, field, identityID); err != nil {
		return false, err
	}

	if observed != nil && IsMember(observed.Data, field, identityID) {
		return false, s.Remove(ctx, docPath, field, identityID)
	}
	return true, s.Add(ctx, docPath, field, identityID)
}

func IsMember(data map[string]any, field, identityID string) bool {
	return docstore.Contains(data, field, identityID)
}

func Members(data map[string]any, field string) []string {
	return docstore.Strings(data, field)
}
