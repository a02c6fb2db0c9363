package network

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	membership "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

type Network struct {
	ConnectionCount int           `json:"connectionCount"`
	Suggestions     []entity.User `json:"suggestions"`
}

type NetworkService interface {
	GetNetwork(ctx context.Context, me string) (*Network, error)
	// Connect adds peer to my connections. Connections are one-way and
	// add-only.
	Connect(ctx context.Context, me, peer string) error
}

type networkService struct {
	store      docstore.Store
	membership membership.MembershipService
}

func NewNetworkService(store docstore.Store, membershipService membership.MembershipService) NetworkService {
	return &networkService{store: store, membership: membershipService}
}

func UsersQuery() docstore.Query {
	return docstore.Query{Collection: entity.CollectionUsers}
}

// Compose builds the network page from the users collection and my own
// user document, which may be nil while it has not loaded.
func Compose(users []docstore.Document, me string, mine *docstore.Document) Network {
	var connections []string
	if mine != nil {
		connections = membership.Members(mine.Data, entity.FieldConnections)
	}
	connected := make(map[string]bool, len(connections))
	for _, id := range connections {
		connected[id] = true
	}

	suggestions := make([]entity.User, 0, len(users))
	for _, doc := range users {
		if doc.ID == me || connected[doc.ID] {
			continue
		}
		suggestions = append(suggestions, entity.UserFromDocument(doc))
	}
	return Network{ConnectionCount: len(connections), Suggestions: suggestions}
}

func (s *networkService) GetNetwork(ctx context.Context, me string) (*Network, error) {
	users, err := s.store.Query(ctx, UsersQuery())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var mine *docstore.Document
	for i := range users {
		if users[i].ID == me {
			mine = &users[i]
		}
	}
	n := Compose(users, me, mine)
	return &n, nil
}

func (s *networkService) Connect(ctx context.Context, me, peer string) error {
	if peer == me {
		return fmt.Errorf("%w: cannot connect to yourself", apperror.ErrInvalidInput)
	}
	if _, err := s.store.Get(ctx, entity.UserPath(peer)); err != nil {
		return fmt.Errorf("load user %s: %w", peer, err)
	}
	return s.membership.Add(ctx, entity.UserPath(me), entity.FieldConnections, peer)
}
