// Package dbinit holds the schema-initializer slot of the data-access layer.
//
// An Initializer is installed for a named data context during startup. It
// is not run at install time: the first call to Context.Database for that
// name runs it, exactly once, and every later call sees the same outcome.
// A failed initialization is sticky; callers get the same error until the
// process restarts.
package dbinit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrAlreadyInitialized is returned by SetInitializer when the named context
// has already been initialized and the strategy can no longer change.
var ErrAlreadyInitialized = errors.New("dbinit: context already initialized")

// Initializer prepares a database the first time a data context uses it.
type Initializer interface {
	InitializeDatabase(ctx context.Context, db *mongo.Database) error
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(ctx context.Context, db *mongo.Database) error

func (f InitializerFunc) InitializeDatabase(ctx context.Context, db *mongo.Database) error {
	return f(ctx, db)
}

// slot is the per-name initialization state shared by every Context opened
// under that name.
type slot struct {
	strategy Initializer

	once    sync.Once
	started bool
	err     error
}

// Registry maps data-context names to their initializer.
type Registry struct {
	log *zap.Logger

	mu    sync.Mutex
	slots map[string]*slot
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		log:   logger,
		slots: make(map[string]*slot),
	}
}

func (r *Registry) slotFor(name string) *slot {
	s, ok := r.slots[name]
	if !ok {
		s = &slot{}
		r.slots[name] = s
	}
	return s
}

// SetInitializer installs strategy for the named context. A nil strategy
// disables initialization for that name. Replacing a strategy is allowed
// until the context has been used.
func (r *Registry) SetInitializer(name string, strategy Initializer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slotFor(name)
	if s.started {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, name)
	}
	s.strategy = strategy
	r.log.Info("database initializer installed",
		zap.String("context", name),
		zap.Bool("enabled", strategy != nil))
	return nil
}

// HasInitializer reports whether a non-nil initializer is installed for name.
func (r *Registry) HasInitializer(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[name]
	return ok && s.strategy != nil
}

// Initialized reports whether the named context has run its initializer
// (successfully or not).
func (r *Registry) Initialized(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[name]
	return ok && s.started
}

// Open returns a data context bound to db. Contexts opened with the same
// name share one initialization.
func (r *Registry) Open(name string, db *mongo.Database) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Context{name: name, db: db, reg: r, slot: r.slotFor(name)}
}

// Context is a named handle to the database that triggers the installed
// initializer on first use.
type Context struct {
	name string
	db   *mongo.Database
	reg  *Registry
	slot *slot
}

// Database returns the underlying database after making sure the context's
// initializer has run.
func (c *Context) Database(ctx context.Context) (*mongo.Database, error) {
	c.slot.once.Do(func() {
		c.reg.mu.Lock()
		c.slot.started = true
		strategy := c.slot.strategy
		c.reg.mu.Unlock()

		if strategy == nil {
			return
		}

		start := time.Now()
		log := c.reg.log.With(zap.String("context", c.name))
		log.Info("initializing database")
		if err := strategy.InitializeDatabase(ctx, c.db); err != nil {
			c.slot.err = fmt.Errorf("initialize %s database: %w", c.name, err)
			log.Error("database initializer failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			return
		}
		log.Info("database initialized", zap.Duration("took", time.Since(start)))
	})
	if c.slot.err != nil {
		return nil, c.slot.err
	}
	return c.db, nil
}

// Collection is shorthand for Database followed by Collection(name).
func (c *Context) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := c.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}
