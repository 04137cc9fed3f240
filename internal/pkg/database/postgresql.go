package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxConns       int32 = 10
	DefaultConnectTimeout       = 10 * time.Second
	DefaultRetryInterval        = 2 * time.Second
)

// Options tunes the pool and the reconnect policy.
type Options struct {
	MaxConns       int32
	ConnectTimeout time.Duration
	RetryInterval  time.Duration
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxConns <= 0 {
		o.MaxConns = DefaultMaxConns
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// DB owns the connection pool. Repositories borrow it per call and never keep
// a connection between requests.
type DB struct {
	*pgxpool.Pool

	logger        *slog.Logger
	retryInterval time.Duration
	reconnects    singleflight.Group
	ctx           context.Context
	cancel        context.CancelFunc

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

// Connect keeps trying to open the pool, waiting RetryInterval between
// attempts, until it succeeds or ctx is cancelled.
func Connect(ctx context.Context, dsn string, opts Options) (*DB, error) {
	opts = opts.withDefaults()
	config, err := poolConfig(dsn, opts)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	err = Retry(ctx, opts.RetryInterval, func(ctx context.Context) error {
		p, err := openPool(ctx, config)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		opts.Logger.Warn("database connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
			slog.Duration("retry_in", wait),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	opts.Logger.Info("database connected",
		slog.String("host", config.ConnConfig.Host),
		slog.Int("max_conns", int(config.MaxConns)),
	)
	return newDB(pool, opts), nil
}

func poolConfig(dsn string, opts Options) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	config.MaxConns = opts.MaxConns
	config.MinConns = min(2, opts.MaxConns)
	config.ConnConfig.ConnectTimeout = opts.ConnectTimeout

	return config, nil
}

func openPool(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func newDB(pool *pgxpool.Pool, opts Options) *DB {
	ctx, cancel := context.WithCancel(context.Background())
	return &DB{
		Pool:          pool,
		logger:        opts.Logger,
		retryInterval: opts.RetryInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := db.Pool.Begin(ctx)
	db.observe(err)
	return tx, err
}

func (db *DB) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	tag, err := db.Pool.Exec(ctx, sql, arguments...)
	db.observe(err)
	return tag, err
}

func (db *DB) Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error) {
	rows, err := db.Pool.Query(ctx, sql, arguments...)
	db.observe(err)
	return rows, err
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return observedRow{Row: db.Pool.QueryRow(ctx, sql, args...), db: db}
}

// Close stops any reconnect in progress, waits for it, and closes the pool.
func (db *DB) Close() {
	db.mu.Lock()
	db.closed = true
	db.mu.Unlock()

	db.cancel()
	db.inFlight.Wait()
	db.Pool.Close()
}

// observe starts a background reconnect when err says the connection is gone.
// The caller still gets err back; statements are not retried.
func (db *DB) observe(err error) {
	if !IsConnectionLost(err) {
		return
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return
	}

	db.inFlight.Add(1)
	go func() {
		defer db.inFlight.Done()
		db.reconnect()
	}()
}

func (db *DB) reconnect() {
	_, _, _ = db.reconnects.Do("reconnect", func() (interface{}, error) {
		if err := db.ctx.Err(); err != nil {
			return nil, err
		}

		db.logger.Warn("database connection lost, resetting pool")
		db.Pool.Reset()

		err := Retry(db.ctx, db.retryInterval, db.Pool.Ping, func(attempt int, err error, wait time.Duration) {
			db.logger.Warn("database reconnect failed, retrying",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
				slog.Duration("retry_in", wait),
			)
		})
		if err != nil {
			db.logger.Info("database reconnect stopped", slog.Any("error", err))
			return nil, err
		}

		db.logger.Info("database connection restored")
		return nil, nil
	})
}

type observedRow struct {
	pgx.Row
	db *DB
}

func (r observedRow) Scan(dest ...interface{}) error {
	err := r.Row.Scan(dest...)
	r.db.observe(err)
	return err
}

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Transactor runs fn inside one transaction. Repositories called with the
// ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
