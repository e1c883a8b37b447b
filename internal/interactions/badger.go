// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	badgerEventPrefix   = "evt:"
	badgerUserPrefix    = "user:"
	badgerProductPrefix = "product:"
)

// BadgerLog stores events in BadgerDB with per-user and per-product index keys.
type BadgerLog struct {
	db     *badger.DB
	mu     sync.RWMutex
	now    func() time.Time
	closed bool
	logger zerolog.Logger
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	Path       string
	SyncWrites bool

	// InMemory runs without touching disk. Path is ignored.
	InMemory bool
}

// OpenBadger opens or creates the database directory.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenBadger(opts BadgerOptions, logger zerolog.Logger) (*BadgerLog, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", ErrTransientIO, err)
	}

	l := &BadgerLog{
		db:     db,
		now:    time.Now,
		logger: logger.With().Str("component", "interactions-badger").Logger(),
	}
	if n, err := l.Len(context.Background()); err == nil {
		l.logger.Info().Str("path", opts.Path).Int("events", n).Msg("Interaction log opened")
	}
	return l, nil
}

// invertedTimestamp sorts newer timestamps first under byte ordering.
func invertedTimestamp(t time.Time) string {
	return fmt.Sprintf("%019d", uint64(math.MaxInt64-t.UnixNano()))
}

func eventKey(id string) []byte {
	return []byte(badgerEventPrefix + id)
}

// indexPrefix escapes the owner id so ids containing ':' cannot collide.
func indexPrefix(kind, owner string) string {
	return kind + url.QueryEscape(owner) + ":"
}

func indexKey(kind, owner string, ts time.Time, id string) []byte {
	return []byte(indexPrefix(kind, owner) + invertedTimestamp(ts) + ":" + id)
}

// Append writes the event and both index keys in one transaction.
func (l *BadgerLog) Append(ctx context.Context, e *Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return "", ErrClosed
	}

	ev := prepare(e, l.now())
	data, err := json.Marshal(&ev)
	if err != nil {
		return "", fmt.Errorf("%w: encode event: %w", ErrTransientIO, err)
	}

	id := []byte(ev.ID)
	err = l.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(eventKey(ev.ID), data)); err != nil {
			return err
		}
		if err := txn.SetEntry(badger.NewEntry(indexKey(badgerUserPrefix, ev.UserID, ev.Timestamp, ev.ID), id)); err != nil {
			return err
		}
		if ev.ProductID == "" {
			return nil
		}
		return txn.SetEntry(badger.NewEntry(indexKey(badgerProductPrefix, ev.ProductID, ev.Timestamp, ev.ID), id))
	})
	if err != nil {
		return "", fmt.Errorf("%w: append: %w", ErrTransientIO, err)
	}
	return ev.ID, nil
}

// ByUser returns the user's events, newest first.
func (l *BadgerLog) ByUser(ctx context.Context, userID string, limit int) ([]Event, error) {
	return l.byIndex(ctx, indexPrefix(badgerUserPrefix, userID), limit)
}

// ByProduct returns the product's events, newest first.
func (l *BadgerLog) ByProduct(ctx context.Context, productID string, limit int) ([]Event, error) {
	return l.byIndex(ctx, indexPrefix(badgerProductPrefix, productID), limit)
}

func (l *BadgerLog) byIndex(ctx context.Context, prefix string, limit int) ([]Event, error) {
	if limit <= 0 {
		return []Event{}, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	out := make([]Event, 0, min(limit, 16))
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(out) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			ev, err := getEvent(txn, string(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrTransientIO, err)
	}
	return out, nil
}

func getEvent(txn *badger.Txn, id string) (Event, error) {
	item, err := txn.Get(eventKey(id))
	if err != nil {
		return Event{}, err
	}
	var ev Event
	err = item.Value(func(val []byte) error {
		return decodeEvent(val, &ev)
	})
	return ev, err
}

func decodeEvent(val []byte, ev *Event) error {
	if err := json.Unmarshal(val, ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]any{}
	}
	return nil
}

// Events scans every event and returns those since the given time, oldest first.
func (l *BadgerLog) Events(ctx context.Context, since time.Time) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	var out []Event
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(badgerEventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var ev Event
			if err := it.Item().Value(func(val []byte) error {
				return decodeEvent(val, &ev)
			}); err != nil {
				l.logger.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable event")
				continue
			}
			if since.IsZero() || ev.Timestamp.After(since) {
				out = append(out, ev)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %w", ErrTransientIO, err)
	}

	// evt keys sort by id; ids start with the second-resolution time.
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.Before(out[b].Timestamp)
	})
	return out, nil
}

// Len counts the event keys.
func (l *BadgerLog) Len(context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, ErrClosed
	}

	count := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerEventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrTransientIO, err)
	}
	return count, nil
}

// RunGC reclaims value log space until no file can be rewritten.
func (l *BadgerLog) RunGC(ratio float64) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	for {
		err := l.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Backend returns "badger".
func (l *BadgerLog) Backend() string { return "badger" }

// Close closes the database.
func (l *BadgerLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("%w: close badger: %w", ErrTransientIO, err)
	}
	return nil
}

var _ Log = (*BadgerLog)(nil)
