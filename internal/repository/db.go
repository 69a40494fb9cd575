// Package repository implements C4: transactional Postgres persistence for
// every entity in the domain model. The teacher has no relational store of
// its own (it is OpenSearch-only); this layer is enriched from the rest of
// the example pack, which depends on jackc/pgx/v5 for exactly this role.
package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var Schema string

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every
// repository method can run either standalone or inside WithTx without
// two code paths.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DB wraps the connection pool and exposes WithTx as the one transactional
// boundary every stage uses, per §5's "transactional scope per request"
// discipline: commit on clean return, rollback on any raised error.
type DB struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	d.Pool.Close()
}

// EnsureSchema applies the embedded DDL. Idempotent: every statement is
// guarded with IF NOT EXISTS so repeated calls across process restarts are
// harmless — there is no migration runner in scope (§1 Non-goals).
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// WithTx runs fn inside a single transaction, committing on a nil return
// and rolling back otherwise — the repository's correctness basis for the
// "create → classification → extraction must be observable in that order"
// requirement of §5.
func (d *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
