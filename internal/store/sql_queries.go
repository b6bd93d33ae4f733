// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	collectionsTable = "collections"

	colCollection = "collection"
	colDocument   = "document"
	colUpdatedAt  = "updated_at"

	upsertCollectionSuffix = "ON CONFLICT(collection) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at"
)

// builder emits "?" placeholders as go-sqlite3 expects.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// buildSelectCollectionsQuery selects documents of keys. A single key is
// matched with "=", several keys with IN.
func buildSelectCollectionsQuery(keys ...string) (string, []any, error) {
	var where sq.Eq
	if len(keys) == 1 {
		where = sq.Eq{colCollection: keys[0]}
	} else {
		where = sq.Eq{colCollection: keys}
	}

	return builder.
		Select(colCollection, colDocument).
		From(collectionsTable).
		Where(where).
		ToSql()
}

// buildUpsertCollectionsQuery inserts or replaces all documents in one
// statement. Keys are written in the order given.
func buildUpsertCollectionsQuery(keys []string, docs map[string][]byte, updatedAt int64) (string, []any, error) {
	q := builder.
		Insert(collectionsTable).
		Columns(colCollection, colDocument, colUpdatedAt)

	for _, key := range keys {
		q = q.Values(key, docs[key], updatedAt)
	}

	return q.Suffix(upsertCollectionSuffix).ToSql()
}

func buildDeleteCollectionsQuery(keys ...string) (string, []any, error) {
	var where sq.Eq
	if len(keys) == 1 {
		where = sq.Eq{colCollection: keys[0]}
	} else {
		where = sq.Eq{colCollection: keys}
	}

	return builder.
		Delete(collectionsTable).
		Where(where).
		ToSql()
}
