// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"context"
	"sync"
	"time"
)

// MemoryLog keeps events in a slice. It is also the query index of CSVLog.
type MemoryLog struct {
	mu     sync.RWMutex
	events []Event
	now    func() time.Time
	closed bool
}

// NewMemoryLog returns an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{now: time.Now}
}

// WithClock replaces the time source used for assigned timestamps.
func (m *MemoryLog) WithClock(now func() time.Time) *MemoryLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// Append stores a copy of e.
func (m *MemoryLog) Append(_ context.Context, e *Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	ev := prepare(e, m.now())
	m.events = append(m.events, ev)
	return ev.ID, nil
}

// add stores already-prepared events. Used when replaying a file.
func (m *MemoryLog) add(events ...Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// ByUser returns the user's events, newest first.
func (m *MemoryLog) ByUser(_ context.Context, userID string, limit int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.events, func(e *Event) bool { return e.UserID == userID }, limit), nil
}

// ByProduct returns the product's events, newest first.
func (m *MemoryLog) ByProduct(_ context.Context, productID string, limit int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.events, func(e *Event) bool { return e.ProductID == productID }, limit), nil
}

// Events returns events since the given time in chronological order.
func (m *MemoryLog) Events(_ context.Context, since time.Time) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return chronological(m.events, since), nil
}

// Len returns the number of events.
func (m *MemoryLog) Len(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events), nil
}

// Backend returns "memory".
func (m *MemoryLog) Backend() string { return "memory" }

// Close marks the log closed. Queries keep working.
func (m *MemoryLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Log = (*MemoryLog)(nil)
