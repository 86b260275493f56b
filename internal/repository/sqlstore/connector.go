package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Opener establishes a ready-to-use database. Open is the production opener;
// tests swap in counting or failing ones.
type Opener func(ctx context.Context, driver, dsn string) (*sql.DB, error)

// Connector owns the process's single database handle and opens it lazily.
//
// The first DB call starts the connection attempt. Callers that arrive while
// it is in flight wait on the same attempt instead of opening their own
// (singleflight). A failed attempt is not remembered: the next call starts a
// fresh one. Once open, the handle is published through an atomic pointer so
// the fast path takes no lock.
type Connector struct {
	driver  string
	dsn     string
	timeout time.Duration
	open    Opener
	log     *zap.Logger

	group singleflight.Group
	db    atomic.Pointer[sql.DB]
}

type Option func(*Connector)

func WithOpener(o Opener) Option {
	return func(c *Connector) { c.open = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Connector) { c.log = l }
}

func NewConnector(driver, dsn string, timeout time.Duration, opts ...Option) *Connector {
	c := &Connector{
		driver:  driver,
		dsn:     dsn,
		timeout: timeout,
		open:    Open,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Driver reports the configured engine ("sqlite" or "postgres").
func (c *Connector) Driver() string { return c.driver }

// DB returns the shared handle, opening it on first use. ctx only bounds how
// long this caller waits; the attempt itself is bounded by the connect
// timeout, so one impatient caller cannot fail it for everybody else.
func (c *Connector) DB(ctx context.Context) (*sql.DB, error) {
	if db := c.db.Load(); db != nil {
		return db, nil
	}

	ch := c.group.DoChan("connect", func() (any, error) {
		if db := c.db.Load(); db != nil {
			return db, nil
		}

		actx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		start := time.Now()
		db, err := c.open(actx, c.driver, c.dsn)
		if err != nil {
			c.log.Warn("database connection attempt failed",
				zap.String("driver", c.driver),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return nil, err
		}

		c.db.Store(db)
		c.log.Info("database connected",
			zap.String("driver", c.driver),
			zap.Duration("elapsed", time.Since(start)),
		)
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("sqlstore: connecting: %w", res.Err)
		}
		return res.Val.(*sql.DB), nil
	}
}

// Ping opens the database if needed and checks it is reachable.
func (c *Connector) Ping(ctx context.Context) error {
	db, err := c.DB(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlstore: ping: %w", err)
	}
	return nil
}

// Close releases the handle if one was opened. A later DB call reconnects.
func (c *Connector) Close() error {
	if db := c.db.Swap(nil); db != nil {
		return db.Close()
	}
	return nil
}
