package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/pkg/sanitize"
	"github.com/meilisearch/meilisearch-go"
)

const postsIndex = "posts"

const defaultLimit = 20

type SearchService interface {
	IndexPost(post entity.Post) error
	// SearchPosts returns posts matching term, newest first. Without a
	// search engine it scans the posts collection instead.
	SearchPosts(ctx context.Context, term string, limit int) ([]entity.Post, error)
}

type searchService struct {
	client meilisearch.ServiceManager
	store  docstore.Store
}

// NewSearchService wires the post index. client may be nil, in which case
// indexing is a no-op and searches read the store directly.
func NewSearchService(client meilisearch.ServiceManager, store docstore.Store) SearchService {
	s := &searchService{client: client, store: store}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *searchService) initIndexes() {
	searchable := []string{"message", "name", "description"}
	if _, err := s.client.Index(postsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update posts searchable attributes: %v", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update posts sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliPostDoc struct {
	ID           string `json:"id"`
	AuthorID     string `json:"author_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PhotoURL     string `json:"photo_url"`
	Message      string `json:"message"`
	PostImageURL string `json:"post_image_url"`
	CreatedAt    int64  `json:"created_at"`
}

func toDoc(post entity.Post) meiliPostDoc {
	return meiliPostDoc{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		Name:         post.Name,
		Description:  post.Description,
		PhotoURL:     post.PhotoURL,
		Message:      sanitize.Flatten(post.Message),
		PostImageURL: post.PostImageURL,
		CreatedAt:    post.Timestamp.Unix(),
	}
}

func (d meiliPostDoc) post() entity.Post {
	return entity.Post{
		ID:           d.ID,
		AuthorID:     d.AuthorID,
		Name:         d.Name,
		Description:  d.Description,
		PhotoURL:     d.PhotoURL,
		Message:      d.Message,
		PostImageURL: d.PostImageURL,
		Timestamp:    time.Unix(d.CreatedAt, 0).UTC(),
	}
}

func (s *searchService) IndexPost(post entity.Post) error {
	if s.client == nil {
		return nil
	}
	task, err := s.client.Index(postsIndex).AddDocuments([]meiliPostDoc{toDoc(post)}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index post %s: %w", post.ID, err)
	}
	log.Printf("Indexed post %s, task id: %d", post.ID, task.TaskUID)
	return nil
}

func (s *searchService) SearchPosts(ctx context.Context, term string, limit int) ([]entity.Post, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	term = sanitize.Flatten(term)
	if s.client == nil {
		return s.scan(ctx, term, limit)
	}

	raw, err := s.client.Index(postsIndex).SearchRaw(term, &meilisearch.SearchRequest{
		Limit: int64(limit),
		Sort:  []string{"created_at:desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return decodeHits(*raw)
}

func decodeHits(raw []byte) ([]entity.Post, error) {
	var resp struct {
		Hits []meiliPostDoc `json:"hits"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}
	posts := make([]entity.Post, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		posts = append(posts, hit.post())
	}
	return posts, nil
}

func (s *searchService) scan(ctx context.Context, term string, limit int) ([]entity.Post, error) {
	docs, err := s.store.Query(ctx, docstore.Query{
		Collection: entity.CollectionPosts,
		OrderBy:    entity.FieldTimestamp,
		Direction:  docstore.Desc,
	})
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}

	posts := make([]entity.Post, 0, limit)
	for _, doc := range docs {
		post := entity.PostFromDocument(doc)
		if !post.Matches(term) {
			continue
		}
		posts = append(posts, post)
		if len(posts) == limit {
			break
		}
	}
	return posts, nil
}

func strPtr(s string) *string {
	return &s
}
