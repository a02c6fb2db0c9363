package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
	"github.com/Marco3041/linkedin-clone/pkg/sanitize"
)

type ChatService interface {
	SendMessage(ctx context.Context, me, peer, text string) (string, error)
	Transcript(ctx context.Context, me, peer string) ([]entity.Message, error)
	// Connections lists the users the sidebar offers to chat with.
	Connections(ctx context.Context, me string) ([]entity.User, error)
}

type chatService struct {
	store docstore.Store
}

func NewChatService(store docstore.Store) ChatService {
	return &chatService{store: store}
}

func (s *chatService) SendMessage(ctx context.Context, me, peer, text string) (string, error) {
	text = sanitize.Text(text)
	if text == "" {
		return "", fmt.Errorf("%w: message text is required", apperror.ErrInvalidInput)
	}
	channelID, err := ChannelID(me, peer)
	if err != nil {
		return "", err
	}

	id, err := s.store.Insert(ctx, entity.CollectionMessages, map[string]any{
		entity.FieldChatID:    channelID,
		"senderId":            me,
		"text":                text,
		entity.FieldTimestamp: docstore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("send message on %s: %w", channelID, err)
	}
	return id, nil
}

func (s *chatService) Transcript(ctx context.Context, me, peer string) ([]entity.Message, error) {
	channelID, err := ChannelID(me, peer)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, TranscriptQuery(channelID))
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", channelID, err)
	}
	messages := make([]entity.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, entity.MessageFromDocument(doc))
	}
	return messages, nil
}

func (s *chatService) Connections(ctx context.Context, me string) ([]entity.User, error) {
	doc, err := s.store.Get(ctx, entity.UserPath(me))
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", me, err)
	}
	return ResolveUsers(ctx, s.store, docstore.Strings(doc.Data, entity.FieldConnections))
}

// ResolveUsers reads each user document, skipping ids that no longer exist.
func ResolveUsers(ctx context.Context, store docstore.Store, ids []string) ([]entity.User, error) {
	users := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		doc, err := store.Get(ctx, entity.UserPath(id))
		if errors.Is(err, docstore.ErrNotFound) {
			log.Printf("⚠️ connection %s has no user document, skipping", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load user %s: %w", id, err)
		}
		users = append(users, entity.UserFromDocument(*doc))
	}
	return users, nil
}
