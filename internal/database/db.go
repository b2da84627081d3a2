package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Querier is the query surface shared by the database and open transactions.
// Repository helpers that must run either standalone or inside a transaction
// accept a Querier.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB is the database handle repositories depend on.
type DB interface {
	Querier
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	PingContext(ctx context.Context) error
	Close() error
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error)
}

type Instance struct {
	*sqlx.DB
	logger *zap.Logger
}

// Settings control the connection pool.
type Settings struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens a Postgres connection pool and verifies it with a ping.
func Connect(ctx context.Context, settings Settings, logger *zap.Logger) (*Instance, error) {
	db, err := sqlx.Open("postgres", settings.URL)
	if err != nil {
		return nil, err
	}

	if settings.MaxOpenConns > 0 {
		db.SetMaxOpenConns(settings.MaxOpenConns)
	}
	if settings.MaxIdleConns > 0 {
		db.SetMaxIdleConns(settings.MaxIdleConns)
	}
	if settings.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(settings.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Instance{DB: db, logger: logger}, nil
}

// NewInstance wraps an existing sqlx handle. Used by tests.
func NewInstance(db *sqlx.DB, logger *zap.Logger) *Instance {
	return &Instance{DB: db, logger: logger}
}

func (db *Instance) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error) {
	return GetTx(ctx, db.logger, db, opts)
}
