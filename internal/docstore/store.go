// Package docstore defines the contract of the remote document store the
// synchronization core runs against, plus the helpers every driver shares.
//
// A store holds schema-flexible documents grouped into collections. Document
// paths alternate collection and document ids ("posts/p1/comments/c1").
// Queries are scoped to one collection and may be subscribed to: a
// subscription emits the full ordered result set every time matching data
// changes, never a diff.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

// Store errors wrap the application sentinels so that handlers can map them
// to HTTP statuses without knowing about the store.
var (
	ErrNotFound         = fmt.Errorf("docstore: document not found: %w", apperror.ErrNotFound)
	ErrAlreadyExists    = fmt.Errorf("docstore: document already exists: %w", apperror.ErrConflict)
	ErrPermissionDenied = fmt.Errorf("docstore: permission denied: %w", apperror.ErrForbidden)
	ErrUnavailable      = fmt.Errorf("docstore: store unavailable: %w", apperror.ErrUnavailable)
	ErrInvalidPath      = fmt.Errorf("docstore: invalid path: %w", apperror.ErrInvalidInput)
)

// Store is the remote store client consumed by the core.
type Store interface {
	// Insert adds a document with a generated id to collection.
	Insert(ctx context.Context, collection string, data map[string]any) (string, error)
	// Create writes the document at path only if it does not exist yet.
	// It returns ErrAlreadyExists otherwise.
	Create(ctx context.Context, path string, data map[string]any) error
	// SetMerge upserts the document at path without touching fields that
	// are not present in data.
	SetMerge(ctx context.Context, path string, data map[string]any) error
	// AddToSet atomically adds value to the array field. Adding a value
	// that is already present is a no-op. The document must exist.
	AddToSet(ctx context.Context, path, field string, value any) error
	// RemoveFromSet atomically removes value from the array field.
	// Removing an absent value is a no-op. The document must exist.
	RemoveFromSet(ctx context.Context, path, field string, value any) error
	// Delete removes the document at path. Deleting an absent document is
	// a no-op.
	Delete(ctx context.Context, path string) error
	// Get reads one document, returning ErrNotFound when it is absent.
	Get(ctx context.Context, path string) (*Document, error)
	// Query runs q once.
	Query(ctx context.Context, q Query) ([]Document, error)
	// Subscribe opens a live channel for q. The first event carries the
	// current result set.
	Subscribe(ctx context.Context, q Query) (Stream, error)
	Close() error
}

type Document struct {
	ID   string         `json:"id"`
	Path string         `json:"path"`
	Data map[string]any `json:"data"`
}

// Event is one delivery on a Stream. A non-nil Err is terminal: the stream
// closes its channel right after delivering it.
type Event struct {
	Docs []Document
	Err  error
}

// Stream is an open subscription channel.
type Stream interface {
	Events() <-chan Event
	// Stop releases the channel. It is safe to call more than once; the
	// events channel is closed once the stream has shut down.
	Stop()
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

type Op string

const OpEqual Op = "=="

type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// Query selects documents of one collection. Documents lacking the OrderBy
// field are not part of the result, as in Firestore.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  Direction
	Limit      int
}

// Key names the (collection, filter, order) tuple of q. Two queries with the
// same key observe the same result set.
func (q Query) Key() string {
	filters := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		filters = append(filters, fmt.Sprintf("%s%s%v", f.Field, f.Op, f.Value))
	}
	sort.Strings(filters)

	var b strings.Builder
	b.WriteString(q.Collection)
	for _, f := range filters {
		b.WriteString("|where:")
		b.WriteString(f)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, "|order:%s:%s", q.OrderBy, q.Direction)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, "|limit:%d", q.Limit)
	}
	return b.String()
}

// Matches reports whether data passes every filter of q.
func (q Query) Matches(data map[string]any) bool {
	for _, f := range q.Filters {
		v, ok := data[f.Field]
		if !ok || Compare(v, f.Value) != 0 {
			return false
		}
	}
	if q.OrderBy != "" {
		if _, ok := data[q.OrderBy]; !ok {
			return false
		}
	}
	return true
}

// Apply filters, orders and limits docs in place of the store.
func (q Query) Apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if q.Matches(d.Data) {
			out = append(out, d)
		}
	}
	SortDocuments(out, q.OrderBy, q.Direction)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

type serverTimestamp struct{}

func (serverTimestamp) String() string { return "ServerTimestamp" }

// ServerTimestamp is a placeholder resolved by the store at write time.
var ServerTimestamp any = serverTimestamp{}

func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}
