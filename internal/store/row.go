package store

import (
	"fmt"
	"time"

	"encoding/json/v2"

	"github.com/marginapp/margin-server/internal/db"
)

// Schema-checked row decoding. Every accessor fails fast on a missing
// column or a value of the wrong driver type instead of producing a
// partially populated entity.

func fieldString(r db.Row, col string) (string, error) {
	v, ok := r[col]
	if !ok {
		return "", fmt.Errorf("row is missing column %q", col)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("column %q: expected text, got %T", col, v)
	}
}

// fieldNullString treats NULL as the empty string.
func fieldNullString(r db.Row, col string) (string, error) {
	v, ok := r[col]
	if !ok {
		return "", fmt.Errorf("row is missing column %q", col)
	}
	if v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("column %q: expected text or null, got %T", col, v)
	}
}

func fieldInt(r db.Row, col string) (int64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("row is missing column %q", col)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("column %q: expected integer, got %T", col, v)
	}
	return n, nil
}

// fieldNullFloat treats NULL as zero.
func fieldNullFloat(r db.Row, col string) (float64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("row is missing column %q", col)
	}
	switch f := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return f, nil
	case int64:
		return float64(f), nil
	default:
		return 0, fmt.Errorf("column %q: expected real or null, got %T", col, v)
	}
}

func fieldTime(r db.Row, col string) (time.Time, error) {
	s, err := fieldString(r, col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q: %w", col, err)
	}
	return t, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullString maps the empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// encodeTokenIDs serializes a token-id list to its JSON array column form.
func encodeTokenIDs(ids []string) (string, error) {
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode token ids: %w", err)
	}
	return string(b), nil
}

// decodeTokenIDs parses the JSON array column form back to a list.
func decodeTokenIDs(s string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("decode token ids: %w", err)
	}
	return ids, nil
}
