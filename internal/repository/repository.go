package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

type Repository struct {
	DB            *sql.DB
	GoquDBWrapper *goqu.Database
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:            db,
		GoquDBWrapper: goqu.New("postgres", db),
	}
}

// TxRunner runs a closure inside one database transaction. Services depend
// on this interface instead of a concrete database so the ledger engines can
// be exercised in tests without Postgres.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error
	// WithSerializableTransaction is required for label number generation,
	// where two concurrent batches must not pick the same next number.
	WithSerializableTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error {
	return runInTransaction(ctx, r.DB, nil, fn)
}

func (r *Repository) WithSerializableTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error {
	return runInTransaction(ctx, r.DB, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func runInTransaction(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *goqu.TxDatabase) error) (err error) {
	rawTx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	tx := goqu.NewTx("postgres", rawTx)
	defer func() {
		if p := recover(); p != nil {
			rawTx.Rollback()
			panic(p)
		} else if err != nil {
			rawTx.Rollback()
		} else {
			err = rawTx.Commit()
		}
	}()

	err = fn(tx)
	return
}
