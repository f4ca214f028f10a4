package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultTable = "kv_store"

// Postgres keeps values in a two-column table. The table is created on the
// first write.
type Postgres struct {
	db    *pgxpool.Pool
	table string
}

func NewPostgres(ctx context.Context, dbUrl, table string) (*Postgres, error) {
	if table == "" {
		return nil, ErrBadName
	}
	poolConfig, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	return &Postgres{
		db:    db,
		table: pgx.Identifier{table}.Sanitize(),
	}, nil
}

func (pg *Postgres) Ping(ctx context.Context) error {
	return pg.db.Ping(ctx)
}

func (pg *Postgres) Close() {
	pg.db.Close()
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}

func (pg *Postgres) createTable(ctx context.Context) error {
	_, err := pg.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+pg.table+` (
			key		TEXT PRIMARY KEY,
			value	BYTEA NOT NULL,
			updated_at	TIMESTAMPTZ NOT NULL DEFAULT now()
		);`)
	if err != nil {
		return fmt.Errorf("unable to create table %s: %w", pg.table, err)
	}
	return nil
}

func (pg *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := pg.db.QueryRow(ctx,
		`SELECT value FROM `+pg.table+` WHERE key = $1;`,
		key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
		return nil, ErrNotFound
	}
	return value, err
}

// Set inserts a new key-value pair or updates an existing one.
func (pg *Postgres) Set(ctx context.Context, key string, value []byte) error {
	upsert := func() error {
		_, err := pg.db.Exec(ctx, `
			INSERT INTO `+pg.table+` (key, value)
			VALUES (@key, @value)
			ON CONFLICT (key)
			DO UPDATE SET value = excluded.value, updated_at = now();`,
			pgx.NamedArgs{
				"key":   key,
				"value": value,
			})
		return err
	}

	err := upsert()
	if isUndefinedTable(err) {
		if err = pg.createTable(ctx); err != nil {
			return err
		}
		err = upsert()
	}
	return err
}

// Delete removes key without checking if it existed.
func (pg *Postgres) Delete(ctx context.Context, key string) error {
	_, err := pg.db.Exec(ctx, `DELETE FROM `+pg.table+` WHERE key = $1;`, key)
	if isUndefinedTable(err) {
		return nil
	}
	return err
}
