package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/internal/modules/subscription"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

func TestChannelIDSymmetric(t *testing.T) {
	ab, err := ChannelID("u1", "u2")
	assert.Equal(t, nil, err)
	ba, err := ChannelID("u2", "u1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "u1_u2", ab)
	assert.Equal(t, ab, ba)
}

func TestChannelIDDistinctPairs(t *testing.T) {
	ids := []string{"a", "b", "ab", "b1", "a1", "1", "A", "zz", "z"}
	seen := map[string][2]string{}
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			id, err := ChannelID(a, b)
			assert.Equal(t, nil, err)
			if prev, ok := seen[id]; ok {
				t.Fatalf("pairs %v and %v share channel %s", prev, [2]string{a, b}, id)
			}
			seen[id] = [2]string{a, b}
		}
	}
}

func TestChannelIDRejects(t *testing.T) {
	for _, pair := range [][2]string{{"", "u2"}, {"u1", ""}, {"u1", "u1"}, {"u_1", "u2"}, {"u1", "2_"}} {
		_, err := ChannelID(pair[0], pair[1])
		assert.Equal(t, true, errors.Is(err, apperror.ErrInvalidInput))
	}
}

func TestConversationScenario(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	svc := NewChatService(store)

	m := subscription.NewManager(store)
	defer m.Close()
	channelID, _ := ChannelID("u2", "u1")
	sub, err := m.Subscribe(ctx, TranscriptQuery(channelID))
	assert.Equal(t, nil, err)

	_, err = svc.SendMessage(ctx, "u1", "u2", "hi")
	assert.Equal(t, nil, err)
	_, err = svc.SendMessage(ctx, "u2", "u1", "hello back")
	assert.Equal(t, nil, err)
	_, err = svc.SendMessage(ctx, "u1", "u3", "not for u2")
	assert.Equal(t, nil, err)

	for v := range sub.Updates() {
		if v.State == subscription.StateLive && len(v.Docs) == 2 {
			assert.Equal(t, "u1_u2", v.Docs[0].Data[entity.FieldChatID])
			assert.Equal(t, "hi", v.Docs[0].Data["text"])
			assert.Equal(t, "hello back", v.Docs[1].Data["text"])
			break
		}
	}

	transcript, err := svc.Transcript(ctx, "u2", "u1")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(transcript))
	assert.Equal(t, "u1", transcript[0].SenderID)
	assert.Equal(t, "u2", transcript[1].SenderID)
	assert.Equal(t, true, transcript[1].Timestamp.After(transcript[0].Timestamp))
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	svc := NewChatService(store)

	_, err := svc.SendMessage(ctx, "u1", "u2", "   ")
	assert.Equal(t, true, errors.Is(err, apperror.ErrInvalidInput))
	_, err = svc.SendMessage(ctx, "u1", "u1", "hi me")
	assert.Equal(t, true, errors.Is(err, apperror.ErrInvalidInput))
	assert.Equal(t, 0, store.Writes(entity.CollectionMessages))
}

func TestConnectionsSkipMissingUsers(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()

	assert.Equal(t, nil, store.SetMerge(ctx, entity.UserPath("u1"), map[string]any{
		"name":                  "Ada",
		entity.FieldConnections: []any{"u2", "ghost"},
	}))
	assert.Equal(t, nil, store.SetMerge(ctx, entity.UserPath("u2"), map[string]any{"name": "Grace"}))

	users, err := NewChatService(store).Connections(ctx, "u1")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(users))
	assert.Equal(t, "Grace", users[0].Name)

	_, err = NewChatService(store).Connections(ctx, "nobody")
	assert.Equal(t, true, errors.Is(err, docstore.ErrNotFound))
}
