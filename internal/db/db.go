package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"traffic-monitor/internal/config"
)

// ErrClosed is returned by Get once the connection has been closed.
var ErrClosed = errors.New("store connection closed")

type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Opener establishes the underlying database handle.
type Opener func(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error)

// Conn is the process-wide store connection. It is opened on first use and
// shared by every request until Close.
type Conn struct {
	cfg    config.DatabaseConfig
	log    zerolog.Logger
	opener Opener

	mu    sync.Mutex
	state State
	db    *gorm.DB
}

func NewConn(cfg config.DatabaseConfig, log zerolog.Logger) *Conn {
	return NewConnWithOpener(cfg, log, OpenPostgres)
}

func NewConnWithOpener(cfg config.DatabaseConfig, log zerolog.Logger, opener Opener) *Conn {
	return &Conn{
		cfg:    cfg,
		log:    log.With().Str("component", "store").Logger(),
		opener: opener,
		state:  StateUninitialized,
	}
}

// Get returns the shared handle, opening it if this is the first call. A
// failed open leaves the connection uninitialized.
func (c *Conn) Get(ctx context.Context) (*gorm.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateReady:
		return c.db, nil
	case StateClosed:
		return nil, ErrClosed
	}

	c.state = StateConnecting
	db, err := c.opener(ctx, c.cfg, c.log)
	if err != nil {
		c.state = StateUninitialized
		c.log.Error().Err(err).Msg("failed to open store connection")
		return nil, fmt.Errorf("open store: %w", err)
	}

	c.db = db
	c.state = StateReady
	c.log.Info().Msg("store connection ready")
	return db, nil
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close releases the pool. Closing twice is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	prev := c.state
	c.state = StateClosed
	if prev != StateReady || c.db == nil {
		return nil
	}

	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	c.log.Info().Msg("store connection closed")
	return nil
}

// OpenPostgres opens the pool, verifies it and applies migrations when enabled.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:               gormlogger.Discard,
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if cfg.AutoMigrate {
		if err := runMigrations(db.WithContext(ctx)); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		log.Info().Int("statements", len(migrationStatements)).Msg("migrations applied")
	}
	return db, nil
}
