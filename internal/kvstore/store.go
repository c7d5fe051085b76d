// Package kvstore is the durable, bounded key-value store underneath the trip
// repositories. Values are JSON documents addressed by string keys.
//
// A Store wraps a Backend (memory, badger or postgres) and adds JSON encoding,
// a byte budget and serialized read-modify-write units. Every write is applied
// to the backend when it returns; nothing is buffered past a call.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkordes/trip-planner/internal/domain"
)

// DefaultMaxBytes is the default byte budget, matching the 5 MiB quota that
// browsers give localStorage.
const DefaultMaxBytes int64 = 5 << 20

// Write is one mutation in a batch handed to Backend.Apply.
type Write struct {
	Key    string
	Value  []byte
	Delete bool
}

// size returns the number of bytes the write occupies once applied.
func (w Write) size() int64 {
	if w.Delete {
		return 0
	}
	return int64(len(w.Key) + len(w.Value))
}

// Backend is the raw byte storage a Store is built on.
// Implementations must apply a batch all-or-nothing and treat deleting an
// absent key as a no-op.
type Backend interface {
	// Load returns the value stored under key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Apply writes every entry of batch atomically.
	Apply(ctx context.Context, batch []Write) error

	// Size returns the total number of key and value bytes currently stored.
	Size(ctx context.Context) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Store is a JSON key-value store with a byte budget.
// All methods are safe for concurrent use; each call runs to completion
// under a single lock so read-modify-write units never interleave.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	maxBytes int64
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxBytes sets the byte budget. Zero or a negative value disables the limit.
func WithMaxBytes(n int64) Option {
	return func(s *Store) { s.maxBytes = n }
}

// WithLogger sets the logger used to report rejected writes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New constructs a Store over backend with DefaultMaxBytes unless overridden.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get decodes the value stored under key into dst.
// It returns false, and leaves dst untouched, when key is absent.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.backend.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("kvstore.Store.Get: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("kvstore.Store.Get: decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key.
// Returns an error wrapping domain.ErrCapacityExceeded when the write does not
// fit in the byte budget; the previous value is kept in that case.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Set(key, value)
	})
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Update(ctx, func(tx *Tx) error {
		tx.Remove(key)
		return nil
	})
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.backend.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("kvstore.Store.Exists: %w", err)
	}
	return ok, nil
}

// Update runs fn as one read-modify-write unit.
//
// Reads inside fn observe the unit's own pending writes. When fn returns nil
// the pending writes are checked against the byte budget and applied as a
// single batch; when fn returns an error, or the budget check fails, nothing
// is written and the error is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{ctx: ctx, backend: s.backend, pending: make(map[string]Write)}
	if err := fn(tx); err != nil {
		return err
	}

	batch := tx.batch()
	if len(batch) == 0 {
		return nil
	}
	if err := s.checkCapacity(ctx, batch); err != nil {
		return err
	}
	if err := s.backend.Apply(ctx, batch); err != nil {
		return fmt.Errorf("kvstore.Store.Update: %w", err)
	}
	return nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// checkCapacity rejects a batch that grows the store past maxBytes.
// A batch that shrinks or keeps the stored size is always accepted.
func (s *Store) checkCapacity(ctx context.Context, batch []Write) error {
	if s.maxBytes <= 0 {
		return nil
	}

	var delta int64
	for _, w := range batch {
		old, ok, err := s.backend.Load(ctx, w.Key)
		if err != nil {
			return fmt.Errorf("kvstore.Store.Update: %w", err)
		}
		if ok {
			delta -= int64(len(w.Key) + len(old))
		}
		delta += w.size()
	}
	if delta <= 0 {
		return nil
	}

	used, err := s.backend.Size(ctx)
	if err != nil {
		return fmt.Errorf("kvstore.Store.Update: %w", err)
	}
	if used+delta > s.maxBytes {
		s.logger.WarnContext(ctx, "kvstore write rejected",
			"used_bytes", used,
			"delta_bytes", delta,
			"max_bytes", s.maxBytes,
		)
		return fmt.Errorf("kvstore.Store.Update: %d of %d bytes used, write needs %d more: %w",
			used, s.maxBytes, delta, domain.ErrCapacityExceeded)
	}
	return nil
}

// Tx is the view of the store handed to an Update function.
// It is only valid for the duration of that call.
type Tx struct {
	ctx     context.Context
	backend Backend
	pending map[string]Write
	order   []string
}

// Get decodes the value under key into dst, seeing writes made earlier in the unit.
func (tx *Tx) Get(key string, dst any) (bool, error) {
	raw, ok, err := tx.load(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("kvstore.Tx.Get: decode %q: %w", key, err)
	}
	return true, nil
}

// Exists reports whether key is present, seeing writes made earlier in the unit.
func (tx *Tx) Exists(key string) (bool, error) {
	_, ok, err := tx.load(key)
	return ok, err
}

// Set stages value under key.
func (tx *Tx) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore.Tx.Set: encode %q: %w", key, err)
	}
	tx.stage(Write{Key: key, Value: raw})
	return nil
}

// Remove stages the deletion of key.
func (tx *Tx) Remove(key string) {
	tx.stage(Write{Key: key, Delete: true})
}

func (tx *Tx) load(key string) ([]byte, bool, error) {
	if w, ok := tx.pending[key]; ok {
		if w.Delete {
			return nil, false, nil
		}
		return w.Value, true, nil
	}
	raw, ok, err := tx.backend.Load(tx.ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("kvstore.Tx: load %q: %w", key, err)
	}
	return raw, ok, nil
}

func (tx *Tx) stage(w Write) {
	if _, seen := tx.pending[w.Key]; !seen {
		tx.order = append(tx.order, w.Key)
	}
	tx.pending[w.Key] = w
}

// batch returns the staged writes in first-touched order, one per key.
func (tx *Tx) batch() []Write {
	out := make([]Write, 0, len(tx.order))
	for _, k := range tx.order {
		out = append(out, tx.pending[k])
	}
	return out
}
