package repository

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
)

type PostRepository interface {
	// Create stores post with a store-assigned timestamp and an empty like
	// set, returning the new id.
	Create(ctx context.Context, post entity.Post) (string, error)
	FindByID(ctx context.Context, postID string) (*docstore.Document, error)
	List(ctx context.Context, limit int) ([]docstore.Document, error)
	CreateComment(ctx context.Context, postID string, comment entity.Comment) (string, error)
	ListComments(ctx context.Context, postID string) ([]docstore.Document, error)
}

type postRepository struct {
	store docstore.Store
}

func NewPostRepository(store docstore.Store) PostRepository {
	return &postRepository{store: store}
}

// FeedQuery is every post, newest first.
func FeedQuery() docstore.Query {
	return docstore.Query{
		Collection: entity.CollectionPosts,
		OrderBy:    entity.FieldTimestamp,
		Direction:  docstore.Desc,
	}
}

// CommentsQuery is the comment thread of postID, newest first.
func CommentsQuery(postID string) docstore.Query {
	return docstore.Query{
		Collection: entity.CommentsPath(postID),
		OrderBy:    entity.FieldTimestamp,
		Direction:  docstore.Desc,
	}
}

func (r *postRepository) Create(ctx context.Context, post entity.Post) (string, error) {
	data := map[string]any{
		"authorId":            post.AuthorID,
		"name":                post.Name,
		"description":         post.Description,
		"message":             post.Message,
		"photoUrl":            post.PhotoURL,
		entity.FieldTimestamp: docstore.ServerTimestamp,
		entity.FieldLikes:     []any{},
	}
	if post.PostImageURL != "" {
		data["postImageUrl"] = post.PostImageURL
	}
	return r.store.Insert(ctx, entity.CollectionPosts, data)
}

func (r *postRepository) FindByID(ctx context.Context, postID string) (*docstore.Document, error) {
	doc, err := r.store.Get(ctx, entity.PostPath(postID))
	if err != nil {
		return nil, fmt.Errorf("find post %s: %w", postID, err)
	}
	return doc, nil
}

func (r *postRepository) List(ctx context.Context, limit int) ([]docstore.Document, error) {
	q := FeedQuery()
	q.Limit = limit
	return r.store.Query(ctx, q)
}

func (r *postRepository) CreateComment(ctx context.Context, postID string, comment entity.Comment) (string, error) {
	return r.store.Insert(ctx, entity.CommentsPath(postID), map[string]any{
		"text":                comment.Text,
		entity.FieldUserID:    comment.UserID,
		"userName":            comment.UserName,
		"userPhoto":           comment.UserPhoto,
		entity.FieldTimestamp: docstore.ServerTimestamp,
	})
}

func (r *postRepository) ListComments(ctx context.Context, postID string) ([]docstore.Document, error) {
	return r.store.Query(ctx, CommentsQuery(postID))
}
