// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildSelectCollectionsQuery(t *testing.T) {
	t.Run("single key uses equality", func(t *testing.T) {
		query, args, err := buildSelectCollectionsQuery("notes")
		require.NoError(t, err)

		q := strings.ToLower(query)
		assert.Contains(t, q, "select collection, document from collections")
		assert.Contains(t, q, "where collection = ?")
		assert.Equal(t, []any{"notes"}, args)
	})

	t.Run("several keys use IN", func(t *testing.T) {
		// squirrel generates IN (?,?,?) for a slice.
		query, args, err := buildSelectCollectionsQuery("notes", "folders", "labels")
		require.NoError(t, err)

		assert.Contains(t, query, "collection IN (?,?,?)")
		assert.Equal(t, []any{"notes", "folders", "labels"}, args)
	})
}

func Test_buildUpsertCollectionsQuery(t *testing.T) {
	docs := map[string][]byte{
		"folders": []byte(`{}`),
		"notes":   []byte(`{"n1":{}}`),
	}

	query, args, err := buildUpsertCollectionsQuery([]string{"folders", "notes"}, docs, 42)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO collections"))
	assert.Contains(t, query, "(collection,document,updated_at)")
	assert.Contains(t, query, "VALUES (?,?,?),(?,?,?)")
	assert.True(t, strings.HasSuffix(query, upsertCollectionSuffix))

	require.Len(t, args, 6)
	assert.Equal(t, "folders", args[0])
	assert.Equal(t, []byte(`{}`), args[1])
	assert.Equal(t, int64(42), args[2])
	assert.Equal(t, "notes", args[3])
}

func Test_buildDeleteCollectionsQuery(t *testing.T) {
	query, args, err := buildDeleteCollectionsQuery("notes")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM collections WHERE collection = ?", query)
	assert.Equal(t, []any{"notes"}, args)

	query, args, err = buildDeleteCollectionsQuery("a", "b")
	require.NoError(t, err)
	assert.Contains(t, query, "collection IN (?,?)")
	assert.Len(t, args, 2)
}
