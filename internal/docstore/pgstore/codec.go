package pgstore

import (
	"encoding/json"
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"gorm.io/datatypes"
)

// Timestamps are stored as {"__ts": "<RFC3339Nano>"} so they survive the
// trip through jsonb with their type intact.
const timeKey = "__ts"

func encode(data map[string]any) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(data))
	for k, v := range data {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return map[string]any{timeKey: t.UTC().Format(time.RFC3339Nano)}
	case *time.Time:
		if t == nil {
			return nil
		}
		return encodeValue(*t)
	case map[string]any:
		return map[string]any(encode(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e)
		}
		return out
	case []string:
		return encodeValue(docstore.AsSlice(t))
	}
	return v
}

func decode(data datatypes.JSONMap) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if raw, ok := t[timeKey].(string); ok && len(t) == 1 {
			if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				return ts
			}
		}
		return decode(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeValue(e)
		}
		return out
	}
	return v
}

// jsonText renders a single value as jsonb literal text for SQL parameters.
func jsonText(v any) (string, error) {
	b, err := json.Marshal(encodeValue(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
