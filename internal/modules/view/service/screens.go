package view

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/internal/identity"
	chat "github.com/Marco3041/linkedin-clone/internal/modules/chat/service"
	feedRepo "github.com/Marco3041/linkedin-clone/internal/modules/feed/repository"
	feed "github.com/Marco3041/linkedin-clone/internal/modules/feed/service"
	group "github.com/Marco3041/linkedin-clone/internal/modules/group/service"
	job "github.com/Marco3041/linkedin-clone/internal/modules/job/service"
	network "github.com/Marco3041/linkedin-clone/internal/modules/network/service"
	notifRepo "github.com/Marco3041/linkedin-clone/internal/modules/notification/repository"
	seeding "github.com/Marco3041/linkedin-clone/internal/modules/seeding/service"
	"github.com/Marco3041/linkedin-clone/internal/modules/subscription"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

// Screen names accepted by mount.
const (
	ScreenFeed          = "feed"
	ScreenChat          = "chat"
	ScreenNotifications = "notifications"
	ScreenGroups        = "groups"
	ScreenJobs          = "jobs"
	ScreenNetwork       = "network"
)

// Transcript is the chat screen's read model.
type Transcript struct {
	ChatID   string           `json:"chatId"`
	Peer     string           `json:"peer"`
	Messages []entity.Message `json:"messages"`
}

func static(q docstore.Query) subscription.DeriveFunc {
	return func(identity.Identity) docstore.Query { return q }
}

func (s *Session) define(name string, params map[string]string) (*definition, error) {
	switch name {
	case ScreenFeed:
		board := feed.NewBoard()
		term := params["q"]
		return &definition{
			queries: []subscription.DeriveFunc{static(feedRepo.FeedQuery())},
			board:   board,
			render: func(me identity.Identity, views []subscription.View) any {
				board.SetPosts(views[0].Docs)
				return board.Render(me.UID, term)
			},
		}, nil

	case ScreenChat:
		peer := params["peer"]
		if peer == "" {
			return nil, fmt.Errorf("%w: chat needs a peer", apperror.ErrInvalidInput)
		}
		return &definition{
			queries: []subscription.DeriveFunc{func(me identity.Identity) docstore.Query {
				channelID, err := chat.ChannelID(me.UID, peer)
				if err != nil {
					// An empty query is refused by the manager, which turns
					// the screen unavailable.
					return docstore.Query{}
				}
				return chat.TranscriptQuery(channelID)
			}},
			render: func(me identity.Identity, views []subscription.View) any {
				channelID, _ := chat.ChannelID(me.UID, peer)
				messages := make([]entity.Message, 0, len(views[0].Docs))
				for _, doc := range views[0].Docs {
					messages = append(messages, entity.MessageFromDocument(doc))
				}
				return Transcript{ChatID: channelID, Peer: peer, Messages: messages}
			},
		}, nil

	case ScreenNotifications:
		return &definition{
			queries: []subscription.DeriveFunc{func(me identity.Identity) docstore.Query {
				return notifRepo.ByUserQuery(me.UID)
			}},
			render: func(_ identity.Identity, views []subscription.View) any {
				notes := make([]entity.Notification, 0, len(views[0].Docs))
				for _, doc := range views[0].Docs {
					notes = append(notes, entity.NotificationFromDocument(doc))
				}
				return notes
			},
		}, nil

	case ScreenGroups:
		return &definition{
			prepare: s.seed(entity.CollectionGroups, seeding.DefaultGroups()),
			queries: []subscription.DeriveFunc{static(group.GroupsQuery())},
			render: func(me identity.Identity, views []subscription.View) any {
				return group.Views(views[0].Docs, me.UID)
			},
		}, nil

	case ScreenJobs:
		return &definition{
			prepare: s.seed(entity.CollectionJobs, seeding.DefaultJobs()),
			queries: []subscription.DeriveFunc{static(job.JobsQuery())},
			render: func(_ identity.Identity, views []subscription.View) any {
				jobs := make([]entity.Job, 0, len(views[0].Docs))
				for _, doc := range views[0].Docs {
					jobs = append(jobs, entity.JobFromDocument(doc))
				}
				return jobs
			},
		}, nil

	case ScreenNetwork:
		return &definition{
			queries: []subscription.DeriveFunc{static(network.UsersQuery())},
			render: func(me identity.Identity, views []subscription.View) any {
				var mine *docstore.Document
				for i := range views[0].Docs {
					if views[0].Docs[i].ID == me.UID {
						mine = &views[0].Docs[i]
						break
					}
				}
				return network.Compose(views[0].Docs, me.UID, mine)
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown screen %q", apperror.ErrInvalidInput, name)
	}
}

// seed fills collection with defaults before its screen subscribes. A
// failure is logged by the screen and the subscription proceeds.
func (s *Session) seed(collection string, defaults []map[string]any) func(context.Context) error {
	if s.deps.Seeding == nil {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := s.deps.Seeding.EnsureSeeded(ctx, collection, defaults)
		return err
	}
}
