package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	feedDto "github.com/Marco3041/linkedin-clone/internal/modules/feed/dto"
	feedRepo "github.com/Marco3041/linkedin-clone/internal/modules/feed/repository"
	membership "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"
	search "github.com/Marco3041/linkedin-clone/internal/modules/search/service"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
	"github.com/Marco3041/linkedin-clone/pkg/ratelimiter"
	"github.com/Marco3041/linkedin-clone/pkg/sanitize"
)

const defaultFeedLimit = 50

type FeedService interface {
	CreatePost(ctx context.Context, userID string, req feedDto.CreatePostRequest) (*entity.Post, error)
	AddComment(ctx context.Context, userID, postID string, req feedDto.CreateCommentRequest) (*entity.Comment, error)
	// ToggleLike flips userID's like based on the post as currently stored.
	ToggleLike(ctx context.Context, userID, postID string) (*feedDto.LikeResponse, error)
	GetFeed(ctx context.Context, userID string, filter feedDto.FeedFilter) ([]feedDto.FeedItem, error)
	GetComments(ctx context.Context, postID string) ([]entity.Comment, error)
}

type feedService struct {
	postRepo     feedRepo.PostRepository
	store        docstore.Store
	membership   membership.MembershipService
	limiter      *ratelimiter.Limiter
	postCooldown time.Duration
	search       search.SearchService
}

func NewFeedService(postRepo feedRepo.PostRepository, store docstore.Store, membershipService membership.MembershipService, limiter *ratelimiter.Limiter, postCooldown time.Duration, searchService search.SearchService) FeedService {
	return &feedService{
		postRepo:     postRepo,
		store:        store,
		membership:   membershipService,
		limiter:      limiter,
		postCooldown: postCooldown,
		search:       searchService,
	}
}

// author reads the profile a new post or comment is stamped with. Users
// without a profile document post as "User".
func (s *feedService) author(ctx context.Context, userID string) (entity.User, error) {
	doc, err := s.store.Get(ctx, entity.UserPath(userID))
	if errors.Is(err, docstore.ErrNotFound) {
		return entity.User{ID: userID, Name: "User"}, nil
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("load author %s: %w", userID, err)
	}
	user := entity.UserFromDocument(*doc)
	if user.Name == "" {
		user.Name = "User"
	}
	return user, nil
}

func (s *feedService) CreatePost(ctx context.Context, userID string, req feedDto.CreatePostRequest) (*entity.Post, error) {
	message := sanitize.Text(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", apperror.ErrInvalidInput)
	}

	allowed, err := s.limiter.Allow(ctx, userID, "post", s.postCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := s.limiter.Retry(ctx, userID, "post")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only create one post every %.0f seconds. Please wait %.0f seconds", s.postCooldown.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = s.limiter.Clear(ctx, userID, "post")
		}
	}()

	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := entity.Post{
		AuthorID:     userID,
		Name:         author.Name,
		Description:  author.Email,
		PhotoURL:     author.PhotoURL,
		Message:      message,
		PostImageURL: req.PostImageURL,
		Likes:        []string{},
	}
	id, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	creationFailed = false
	post.ID = id

	if doc, err := s.postRepo.FindByID(ctx, id); err == nil {
		post = entity.PostFromDocument(*doc)
	}

	if s.search != nil {
		if err := s.search.IndexPost(post); err != nil {
			log.Printf("⚠️ post %s not indexed: %v", id, err)
		}
	}
	return &post, nil
}

func (s *feedService) AddComment(ctx context.Context, userID, postID string, req feedDto.CreateCommentRequest) (*entity.Comment, error) {
	text := sanitize.Text(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", apperror.ErrInvalidInput)
	}
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := entity.Comment{
		UserID:    userID,
		UserName:  author.Name,
		UserPhoto: author.PhotoURL,
		Text:      text,
	}
	id, err := s.postRepo.CreateComment(ctx, postID, comment)
	if err != nil {
		return nil, fmt.Errorf("comment on %s: %w", postID, err)
	}
	comment.ID = id
	return &comment, nil
}

func (s *feedService) ToggleLike(ctx context.Context, userID, postID string) (*feedDto.LikeResponse, error) {
	doc, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.membership.Toggle(ctx, entity.PostPath(postID), entity.FieldLikes, userID, doc)
	if err != nil {
		return nil, err
	}
	return &feedDto.LikeResponse{PostID: postID, Liked: liked}, nil
}

func (s *feedService) GetFeed(ctx context.Context, userID string, filter feedDto.FeedFilter) ([]feedDto.FeedItem, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	docs, err := s.postRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	board := NewBoard()
	board.SetPosts(docs)
	return board.Render(userID, filter.SearchQuery), nil
}

func (s *feedService) GetComments(ctx context.Context, postID string) ([]entity.Comment, error) {
	docs, err := s.postRepo.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load comments of %s: %w", postID, err)
	}
	return comments(docs), nil
}

func comments(docs []docstore.Document) []entity.Comment {
	out := make([]entity.Comment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.CommentFromDocument(doc))
	}
	return out
}
