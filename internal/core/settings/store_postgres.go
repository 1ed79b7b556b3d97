// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/carta/internal/platform/constants"
	"github.com/taibuivan/carta/internal/platform/database/schema"
	"github.com/taibuivan/carta/internal/platform/dberr"
)

// PostgresPersister keeps the snapshot in one row of storefront.state.
type PostgresPersister struct {
	pool *pgxpool.Pool
	key  string
}

// NewPostgresPersister creates a persister bound to the [constants.StateKey] row.
func NewPostgresPersister(pool *pgxpool.Pool) *PostgresPersister {
	return &PostgresPersister{pool: pool, key: constants.StateKey}
}

/*
Load reads the snapshot row.

Returns:
  - []byte: The JSONB document as text
  - error: ErrNoState when the row does not exist yet
*/
func (persister *PostgresPersister) Load(context context.Context) ([]byte, error) {
	table := schema.StorefrontState
	query := fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s = $1`, table.Value, table.Table, table.Key)

	var blob string
	err := persister.pool.QueryRow(context, query, persister.key).Scan(&blob)
	if err != nil {
		err = dberr.Wrap(err, "load_state")
		if dberr.IsNotFound(err) {
			return nil, ErrNoState
		}
		return nil, err
	}

	return []byte(blob), nil
}

// Save upserts the snapshot row.
func (persister *PostgresPersister) Save(context context.Context, blob []byte) error {
	table := schema.StorefrontState
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		table.Table, table.Key, table.Value, table.UpdatedAt,
		table.Key,
		table.Value, table.Value, table.UpdatedAt, table.UpdatedAt,
	)

	if _, err := persister.pool.Exec(context, query, persister.key, string(blob)); err != nil {
		return dberr.Wrap(err, "save_state")
	}
	return nil
}
