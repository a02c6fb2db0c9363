package feed

import (
	"sync"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	feedDto "github.com/Marco3041/linkedin-clone/internal/modules/feed/dto"
	membership "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"
)

// Board holds the latest snapshot of the feed and of every expanded comment
// thread. The post and comment channels deliver independently, so comment
// snapshots are kept even while their post is not part of the feed and are
// attached once it shows up.
type Board struct {
	mu       sync.Mutex
	posts    []docstore.Document
	expanded map[string]bool
	comments map[string][]docstore.Document
	failed   map[string]string
}

func NewBoard() *Board {
	return &Board{
		expanded: make(map[string]bool),
		comments: make(map[string][]docstore.Document),
		failed:   make(map[string]string),
	}
}

func (b *Board) SetPosts(docs []docstore.Document) {
	b.mu.Lock()
	b.posts = docs
	b.mu.Unlock()
}

// Expand marks the thread of postID as open. Its comments are rendered once
// SetComments delivers them.
func (b *Board) Expand(postID string) {
	b.mu.Lock()
	b.expanded[postID] = true
	delete(b.failed, postID)
	b.mu.Unlock()
}

// Collapse closes the thread and forgets its comments.
func (b *Board) Collapse(postID string) {
	b.mu.Lock()
	delete(b.expanded, postID)
	delete(b.comments, postID)
	delete(b.failed, postID)
	b.mu.Unlock()
}

// SetComments records a snapshot of postID's thread. Snapshots for threads
// that are not expanded are dropped.
func (b *Board) SetComments(postID string, docs []docstore.Document) {
	b.mu.Lock()
	if b.expanded[postID] {
		b.comments[postID] = docs
		delete(b.failed, postID)
	}
	b.mu.Unlock()
}

// FailComments marks the thread of postID as unavailable. Its last
// snapshot is dropped so that stale comments are not rendered as current.
func (b *Board) FailComments(postID string, err error) {
	b.mu.Lock()
	if b.expanded[postID] {
		delete(b.comments, postID)
		b.failed[postID] = err.Error()
	}
	b.mu.Unlock()
}

// Render lists the posts matching term, in feed order, as seen by me.
func (b *Board) Render(me, term string) []feedDto.FeedItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	posts := b.posts
	if !docstore.IsSorted(posts, entity.FieldTimestamp, docstore.Desc) {
		posts = append([]docstore.Document(nil), posts...)
		docstore.SortDocuments(posts, entity.FieldTimestamp, docstore.Desc)
	}

	items := make([]feedDto.FeedItem, 0, len(posts))
	for _, doc := range posts {
		post := entity.PostFromDocument(doc)
		if !post.Matches(term) {
			continue
		}
		item := feedDto.FeedItem{
			Post:      post,
			LikeCount: len(post.Likes),
			LikedByMe: me != "" && membership.IsMember(doc.Data, entity.FieldLikes, me),
			Expanded:  b.expanded[doc.ID],
		}
		if item.Expanded {
			item.CommentsState, item.CommentsError = b.threadState(doc.ID)
			item.Comments = comments(b.comments[doc.ID])
		}
		items = append(items, item)
	}
	return items
}

func (b *Board) threadState(postID string) (string, string) {
	if msg, failed := b.failed[postID]; failed {
		return feedDto.ThreadUnavailable, msg
	}
	if _, ok := b.comments[postID]; ok {
		return feedDto.ThreadLive, ""
	}
	return feedDto.ThreadLoading, ""
}
