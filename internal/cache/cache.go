// Package cache persists solver results in a badger database so that a
// warehouse is only ever searched once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pdrpinto/sokoban"
	"github.com/pdrpinto/sokoban/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const keyPrefix = "solution/"

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sokoban_cache_lookups_total",
	Help: "Solution cache lookups by outcome",
}, []string{"outcome"})

// Config configures a Store.
type Config struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string

	InMemory bool

	// TTL expires entries; zero keeps them forever.
	TTL time.Duration

	// Logger receives badger's internal logging. Nil silences it.
	Logger *slog.Logger
}

// InMemoryConfig returns a Config for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store maps a warehouse to its solution.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open opens or creates the store described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("cache: directory is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return nil, fmt.Errorf("cache: create directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger: %w", err)
	}
	return &Store{db: db, ttl: cfg.TTL}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key identifies a warehouse by its weights and its canonical rendering, so
// two files that differ only in indentation or trailing blanks share a key.
func Key(w *sokoban.Warehouse) []byte {
	h := sha256.New()
	for _, weight := range w.Weights {
		h.Write([]byte(strconv.Itoa(weight)))
		h.Write([]byte{' '})
	}
	h.Write([]byte{'\n'})
	h.Write([]byte(w.String()))
	return append([]byte(keyPrefix), h.Sum(nil)...)
}

// Get returns the stored solution for w. The boolean is false on a miss.
func (s *Store) Get(ctx context.Context, w *sokoban.Warehouse) (sokoban.Solution, bool, error) {
	if err := ctx.Err(); err != nil {
		return sokoban.Solution{}, false, err
	}

	var solution sokoban.Solution
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(w))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &solution)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		lookups.WithLabelValues("miss").Inc()
		return sokoban.Solution{}, false, nil
	case err != nil:
		return sokoban.Solution{}, false, fmt.Errorf("cache: get: %w", err)
	}
	lookups.WithLabelValues("hit").Inc()
	return solution, true, nil
}

// Put stores the solution for w, replacing any previous one.
func (s *Store) Put(ctx context.Context, w *sokoban.Warehouse, solution sokoban.Solution) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(solution)
	if err != nil {
		return fmt.Errorf("cache: encode solution: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(Key(w), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Len counts stored solutions.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Solve returns the cached solution for w or runs the solver and stores its
// outcome. Only definite outcomes are stored: an interrupted or limited
// search is retried next time. The boolean reports a cache hit.
func (s *Store) Solve(ctx context.Context, w *sokoban.Warehouse, opts ...sokoban.SolveOption) (sokoban.Solution, bool, error) {
	logger := logging.FromContext(ctx)

	if solution, ok, err := s.Get(ctx, w); err != nil {
		logger.Warn("cache lookup failed", "error", err)
	} else if ok {
		logger.Debug("cache hit", "solved", solution.Solved, "cost", solution.Cost)
		return solution, true, nil
	}

	solution, err := sokoban.Solve(ctx, w, opts...)
	if err != nil {
		return solution, false, err
	}
	if err := s.Put(ctx, w, solution); err != nil {
		logger.Warn("cache store failed", "error", err)
	}
	return solution, false, nil
}
