package group

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	membership "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"
)

type GroupView struct {
	entity.Group
	Joined bool `json:"joined"`
}

type GroupService interface {
	ListGroups(ctx context.Context, me string) ([]GroupView, error)
	// Join adds me to the group. Joining twice is harmless.
	Join(ctx context.Context, me, groupID string) error
}

type groupService struct {
	store      docstore.Store
	membership membership.MembershipService
}

func NewGroupService(store docstore.Store, membershipService membership.MembershipService) GroupService {
	return &groupService{store: store, membership: membershipService}
}

func GroupsQuery() docstore.Query {
	return docstore.Query{Collection: entity.CollectionGroups}
}

// Views marks the groups me belongs to.
func Views(docs []docstore.Document, me string) []GroupView {
	views := make([]GroupView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, GroupView{
			Group:  entity.GroupFromDocument(doc),
			Joined: membership.IsMember(doc.Data, entity.FieldMembers, me),
		})
	}
	return views
}

func (s *groupService) ListGroups(ctx context.Context, me string) ([]GroupView, error) {
	docs, err := s.store.Query(ctx, GroupsQuery())
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return Views(docs, me), nil
}

func (s *groupService) Join(ctx context.Context, me, groupID string) error {
	return s.membership.Add(ctx, entity.GroupPath(groupID), entity.FieldMembers, me)
}
