package storage

import (
	"errors"
	"fmt"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"
)

// BadgerOptions configures a Badger store.
type BadgerOptions struct {
	// Dir is where the database files live. Ignored when InMemory is set.
	Dir string
	// Namespace prefixes every key as "<Namespace>/<key>". Entries outside
	// the namespace are never read, counted or removed.
	Namespace string
	// InMemory keeps the database off disk.
	InMemory bool
	// Logger receives badger's own diagnostics. Nil discards them.
	Logger *zerolog.Logger
}

// Badger is a store on an embedded BadgerDB database. It is up to the caller
// to close the database with Close.
type Badger struct {
	connection *badger.DB
	prefix     []byte
	closed     atomic.Bool
}

// NewBadger opens the database described by opts.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger: a directory is required unless in memory")
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	bo := badger.DefaultOptions(opts.Dir).
		WithLogger(badgerLogger{logger: logger.With().Str("component", "badger").Logger()})
	if opts.InMemory {
		bo = bo.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("can't open the db connection: %w", err)
	}

	var prefix []byte
	if opts.Namespace != "" {
		prefix = []byte(opts.Namespace + "/")
	}
	return &Badger{connection: db, prefix: prefix}, nil
}

func (db *Badger) key(k string) []byte {
	out := make([]byte, 0, len(db.prefix)+len(k))
	out = append(out, db.prefix...)
	return append(out, k...)
}

func (db *Badger) check() error {
	if db.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Put upserts an entry.
func (db *Badger) Put(key, value string) error {
	if err := db.check(); err != nil {
		return err
	}
	err := db.connection.Update(func(txn *badger.Txn) error {
		if err := txn.Set(db.key(key), []byte(value)); err != nil {
			return fmt.Errorf("could not set the KV pair: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// Get returns the value for key, or ErrNotFound.
func (db *Badger) Get(key string) (string, error) {
	if err := db.check(); err != nil {
		return "", err
	}
	var val []byte
	err := db.connection.View(func(txn *badger.Txn) error {
		item, err := txn.Get(db.key(key))
		if err != nil {
			return err
		}
		// Values are only valid inside the transaction.
		val, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("can't copy the value from the database: %w", err)
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// Delete removes key. Removing an absent key is not an error.
func (db *Badger) Delete(key string) error {
	if err := db.check(); err != nil {
		return err
	}
	return db.connection.Update(func(txn *badger.Txn) error {
		return txn.Delete(db.key(key))
	})
}

// DeleteAll removes every entry in the namespace.
func (db *Badger) DeleteAll() error {
	if err := db.check(); err != nil {
		return err
	}
	if len(db.prefix) == 0 {
		return db.connection.DropAll()
	}
	return db.connection.DropPrefix(db.prefix)
}

// Contains reports whether key has a value.
func (db *Badger) Contains(key string) (bool, error) {
	if err := db.check(); err != nil {
		return false, err
	}
	found := false
	err := db.connection.View(func(txn *badger.Txn) error {
		_, err := txn.Get(db.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Count returns the number of entries in the namespace.
func (db *Badger) Count() (int64, error) {
	if err := db.check(); err != nil {
		return 0, err
	}
	var n int64
	err := db.connection.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = db.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(db.prefix); it.ValidForPrefix(db.prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Cleanup runs BadgerDB's value log garbage collection with the
// recommended discard ratio. Nothing to rewrite is not an error.
func (db *Badger) Cleanup() error {
	if err := db.check(); err != nil {
		return err
	}
	const discardRatio = .5
	err := db.connection.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close tears down the database connection. Later calls are no-ops.
func (db *Badger) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	if err := db.connection.Close(); err != nil {
		return fmt.Errorf("could not close the database: %w", err)
	}
	return nil
}

// badgerLogger routes badger's logger through zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
