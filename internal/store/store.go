// Package store persists shape annotations in an embedded badger database,
// keyed by the content digest of the geometry they belong to.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/philipparndt/gomesh/pkg/shape"
)

// ErrNotFound is returned when no annotations were saved for a digest
var ErrNotFound = errors.New("annotations not found")

const keyPrefix = "annotations/"

// Config configures the database
type Config struct {
	// Path is the directory for the database files. Ignored when InMemory.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// Store saves and loads annotations
type Store struct {
	db *badger.DB
}

// Record is a stored annotation set with its save time
type Record struct {
	Annotations *shape.Annotations `json:"annotations"`
	Saved       time.Time          `json:"saved"`
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens or creates the database
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open annotation store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func key(digest string) []byte {
	return []byte(keyPrefix + digest)
}

// Save stores annotations under their digest, replacing earlier ones
func (s *Store) Save(a *shape.Annotations) error {
	if a.Digest == "" {
		return errors.New("annotations have no geometry digest")
	}
	value, err := json.Marshal(Record{Annotations: a, Saved: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(a.Digest), value)
	})
}

// Load returns the annotations saved for a digest
func (s *Store) Load(digest string) (*Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(digest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, digest)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the annotations of a digest
func (s *Store) Delete(digest string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(digest))
	})
}

// List returns all records, most recently saved first
func (s *Store) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Saved.After(out[j].Saved) })
	return out, nil
}
