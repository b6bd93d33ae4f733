// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// GetJSON decodes the document under key into dst. It reports found=false
// and leaves dst untouched when the key is absent, so callers pre-fill dst
// with the default value.
func GetJSON(ctx context.Context, s KVStore, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s KVStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// UpdateJSON is Update for a typed document. fn receives the decoded current
// value (zero T when absent) and returns the value to store.
func UpdateJSON[T any](ctx context.Context, s KVStore, key string, fn func(cur T, found bool) (T, error)) error {
	return s.Update(ctx, key, func(old []byte) ([]byte, error) {
		var cur T
		found := old != nil
		if found {
			if err := json.Unmarshal(old, &cur); err != nil {
				return nil, fmt.Errorf("decode %q: %w", key, err)
			}
		}

		next, err := fn(cur, found)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
