package docstore

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Value ranks follow Firestore's cross-type ordering.
const (
	rankNull = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankArray
	rankMap
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return rankNumber
	case time.Time, *time.Time:
		return rankTime
	case string:
		return rankString
	case []any, []string:
		return rankArray
	case map[string]any:
		return rankMap
	default:
		return rankOther
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}

// Compare orders two field values the way the store does: by type rank
// first, then by value.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case rankNull:
		return 0
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case rankTime:
		return toTime(a).Compare(toTime(b))
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankArray:
		as, bs := AsSlice(a), AsSlice(b)
		for i := 0; i < len(as) && i < len(bs); i++ {
			if c := Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(as) < len(bs):
			return -1
		case len(as) > len(bs):
			return 1
		}
		return 0
	case rankMap:
		am, bm := a.(map[string]any), b.(map[string]any)
		switch {
		case len(am) < len(bm):
			return -1
		case len(am) > len(bm):
			return 1
		}
		return 0
	}
	return 0
}

// SortDocuments orders docs by field in the given direction, breaking ties
// by document id so that equal keys still yield a stable sequence.
func SortDocuments(docs []Document, field string, dir Direction) {
	sort.SliceStable(docs, func(i, j int) bool {
		c := 0
		if field != "" {
			c = Compare(docs[i].Data[field], docs[j].Data[field])
		}
		if c == 0 {
			c = strings.Compare(docs[i].ID, docs[j].ID)
		}
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
}

// IsSorted reports whether docs are in the order SortDocuments produces.
func IsSorted(docs []Document, field string, dir Direction) bool {
	for i := 1; i < len(docs); i++ {
		c := Compare(docs[i-1].Data[field], docs[i].Data[field])
		if dir == Desc {
			c = -c
		}
		if c > 0 {
			return false
		}
	}
	return true
}

// AsSlice normalizes array values to []any.
func AsSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return nil
}

func String(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

// Strings returns the string elements of an array field.
func Strings(data map[string]any, key string) []string {
	values := AsSlice(data[key])
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func Time(data map[string]any, key string) time.Time {
	return toTime(data[key])
}

// Contains reports whether the array field holds value.
func Contains(data map[string]any, key string, value any) bool {
	for _, v := range AsSlice(data[key]) {
		if Compare(v, value) == 0 {
			return true
		}
	}
	return false
}

// Clone deep-copies a document body so that callers never share maps or
// slices with a store.
func Clone(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return AsSlice(t)
	}
	return v
}

// ResolveServerTimestamps returns a copy of data with every ServerTimestamp
// placeholder replaced by at.
func ResolveServerTimestamps(data map[string]any, at time.Time) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch t := v.(type) {
		case map[string]any:
			out[k] = ResolveServerTimestamps(t, at)
		default:
			if IsServerTimestamp(v) {
				out[k] = at
			} else {
				out[k] = cloneValue(v)
			}
		}
	}
	return out
}

// Clock hands out strictly increasing UTC timestamps, standing in for the
// store-assigned write time.
type Clock struct {
	mu   sync.Mutex
	last time.Time
	Now  func() time.Time
}

func (c *Clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	t := now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
