package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type txContextKey string

const txKey = txContextKey("tx-context-key")

// Tx is an open database transaction. Commit and Rollback take the context so
// that a transaction adopted from an outer caller is left for that caller to
// close.
type Tx interface {
	Querier
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	IsOpen() bool
}

// Transaction wraps sqlx.Tx with idempotent close semantics.
type Transaction struct {
	*sqlx.Tx
	logger *zap.Logger
	closed bool
}

// adoptedTx is handed to callers that joined a transaction already open on the
// context. Its Commit/Rollback are no-ops; the transaction owner closes it.
type adoptedTx struct {
	*Transaction
}

func (adoptedTx) Commit(context.Context) error   { return nil }
func (adoptedTx) Rollback(context.Context) error { return nil }

// GetTx returns the transaction stored on the context when one is open,
// otherwise it begins a new one and stores it. The second return value is safe
// to Commit/Rollback unconditionally: only the outermost caller actually
// closes the underlying transaction.
func GetTx(ctx context.Context, logger *zap.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if existing, ok := ctx.Value(txKey).(*Transaction); ok && existing.IsOpen() {
		return ctx, adoptedTx{existing}, nil
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.Error("failed to begin transaction", zap.Error(err))
		return ctx, nil, fmt.Errorf("failed to begin transaction")
	}

	newTx := &Transaction{Tx: tx, logger: logger}
	ctx = context.WithValue(ctx, txKey, newTx)
	return ctx, newTx, nil
}

func (t *Transaction) IsOpen() bool {
	return !t.closed
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed {
		return nil
	}
	if err := t.Tx.Commit(); err != nil {
		t.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction")
	}
	t.closed = true
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	if err := t.Tx.Rollback(); err != nil {
		t.logger.Error("failed to roll back transaction", zap.Error(err))
		return fmt.Errorf("failed to roll back transaction")
	}
	t.closed = true
	return nil
}
