// Package badgerstore is a kvstore.Backend on an embedded BadgerDB database.
// It is the durable local store used by tripctl and by the API server when
// STORE_DRIVER=badger.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
)

// Backend wraps a BadgerDB instance.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ kvstore.Backend = (*Backend)(nil)

// slogAdapter adapts slog.Logger to the badger.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...))
}

// Badger is chatty at info level; its info lines are logged at debug.
func (a *slogAdapter) Infof(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens the BadgerDB database in dir, creating the directory if needed.
// With inMemory set, dir is ignored and nothing touches the disk.
func Open(dir string, inMemory bool, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(dir); err != nil {
			return nil, fmt.Errorf("badgerstore.Open: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &slogAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore.Open: %w", err)
	}
	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Load reads the value under key in a read-only transaction.
func (b *Backend) Load(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badgerstore.Backend.Load: %w", err)
	}
	return value, true, nil
}

// Apply commits the batch in a single read-write transaction.
// A batch too large for one transaction is reported as domain.ErrCapacityExceeded.
func (b *Backend) Apply(_ context.Context, batch []kvstore.Write) error {
	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	for _, w := range batch {
		var err error
		if w.Delete {
			err = txn.Delete([]byte(w.Key))
		} else {
			err = txn.Set([]byte(w.Key), w.Value)
		}
		if err != nil {
			return fmt.Errorf("badgerstore.Backend.Apply: %w", mapErr(err))
		}
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("badgerstore.Backend.Apply: commit: %w", mapErr(err))
	}
	return nil
}

// Size sums key and value sizes over every live key without fetching values.
func (b *Backend) Size(_ context.Context) (int64, error) {
	var total int64
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			total += int64(len(item.Key())) + item.ValueSize()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badgerstore.Backend.Size: %w", err)
	}
	return total, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

func mapErr(err error) error {
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("%w: %w", domain.ErrCapacityExceeded, err)
	}
	return err
}
