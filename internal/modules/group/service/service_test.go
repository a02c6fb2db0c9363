package group

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	membership "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"
)

func TestJoinMarksGroupJoined(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	svc := NewGroupService(store, membership.NewMembershipService(store))

	assert.Equal(t, nil, store.SetMerge(ctx, entity.GroupPath("g1"), map[string]any{"name": "Gophers", "members": []any{}}))
	assert.Equal(t, nil, store.SetMerge(ctx, entity.GroupPath("g2"), map[string]any{"name": "Rustaceans", "members": []any{}}))

	assert.Equal(t, nil, svc.Join(ctx, "u1", "g1"))
	assert.Equal(t, nil, svc.Join(ctx, "u1", "g1"))

	groups, err := svc.ListGroups(ctx, "u1")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(groups))
	for _, g := range groups {
		assert.Equal(t, g.ID == "g1", g.Joined)
	}
	assert.Equal(t, []string{"u1"}, groups[0].Members)

	err = svc.Join(ctx, "u1", "missing")
	assert.Equal(t, true, errors.Is(err, docstore.ErrNotFound))
}
