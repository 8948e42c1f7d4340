package netforge

import (
	"context"
	"fmt"
)

// GetInto fetches one object and decodes it into T. The object passes through
// the same wire path as Get; the typed decode is a convenience on top.
func GetInto[T any](ctx context.Context, c Client, endpoint string, id int, params map[string]string) (T, error) {
	var out T

	rec, err := c.Get(ctx, endpoint, id, params)
	if err != nil {
		return out, err
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return out, fmt.Errorf("failed to encode record: %v", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode record: %v", err)
	}
	return out, nil
}

// ListInto fetches a collection and decodes the unwrapped results into a
// slice of T. Fails when the collection body is not a JSON array of objects
// compatible with T.
func ListInto[T any](ctx context.Context, c Client, endpoint string, params map[string]string) ([]T, error) {
	raw, err := c.List(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode records: %v", err)
	}
	return out, nil
}
