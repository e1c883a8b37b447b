// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// csvHeader is the column layout of the interaction file.
var csvHeader = []string{
	"interactionId", "userId", "productId", "interactionType", "timestamp",
	"quantity", "value", "rating", "review", "sentiment", "socialSharePlatform", "metadata",
}

// Timestamp layouts accepted when replaying a file. Rows written by this
// package use RFC3339Nano; the rest cover ISO-8601 without a zone.
var csvTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVLog appends one row per event to a file and answers queries from an
// in-memory mirror of the rows.
type CSVLog struct {
	mu     sync.Mutex
	f      *os.File
	w      *csv.Writer
	sync   bool
	index  *MemoryLog
	now    func() time.Time
	closed bool
}

// OpenCSV opens or creates the file at path, replaying existing rows.
// Rows that cannot be parsed are skipped with a warning.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenCSV(ctx context.Context, path string, syncWrites bool, logger zerolog.Logger) (*CSVLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: create directory: %w", ErrTransientIO, err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrTransientIO, path, err)
	}

	index := NewMemoryLog()
	hasHeader, err := replayCSV(ctx, f, index, logger)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	l := &CSVLog{
		f:     f,
		w:     csv.NewWriter(f),
		sync:  syncWrites,
		index: index,
		now:   time.Now,
	}
	if !hasHeader {
		if err := l.writeRow(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
	} else if err := terminateLastLine(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	n, _ := index.Len(ctx)
	logger.Info().Str("path", path).Int("events", n).Msg("Interaction log opened")
	return l, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func replayCSV(ctx context.Context, f *os.File, index *MemoryLog, logger zerolog.Logger) (bool, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false, fmt.Errorf("%w: seek: %w", ErrTransientIO, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read header: %w", ErrTransientIO, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}

	var (
		events  []Event
		skipped int
	)
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return false, fmt.Errorf("%w: line %d: %w", ErrTransientIO, line, err)
		}
		ev, ok := parseCSVRow(rec, cols, line)
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("Skipped unreadable interaction rows")
	}
	index.add(events...)
	return true, nil
}

// terminateLastLine appends a newline when the file does not end with one,
// so the next row does not run into a partially written line.
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %w", ErrTransientIO, err)
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("%w: read tail: %w", ErrTransientIO, err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("%w: terminate line: %w", ErrTransientIO, err)
	}
	return nil
}

func parseCSVRow(rec []string, cols map[string]int, line int) (Event, bool) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ev := Event{
		ID:                  get("interactionId"),
		UserID:              get("userId"),
		ProductID:           get("productId"),
		Kind:                get("interactionType"),
		Timestamp:           parseTimestamp(get("timestamp")),
		Quantity:            parseOptInt(get("quantity")),
		Value:               parseOptFloat(get("value")),
		Rating:              parseOptFloat(get("rating")),
		Review:              get("review"),
		Sentiment:           get("sentiment"),
		SocialSharePlatform: get("socialSharePlatform"),
		Metadata:            decodeMetadata(get("metadata")),
	}
	if ev.UserID == "" || ev.Kind == "" {
		return Event{}, false
	}
	if ev.ID == "" {
		ev.ID = legacyEventID(line, &ev)
	}
	return ev, true
}

func parseTimestamp(s string) time.Time {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseOptInt(s string) *int {
	if s == "" {
		return nil
	}
	// Files written by dataframe tools render integers as "2.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Append writes one row and flushes it before returning.
func (l *CSVLog) Append(ctx context.Context, e *Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return "", ErrClosed
	}

	ev := prepare(e, l.now())
	row := []string{
		ev.ID,
		ev.UserID,
		ev.ProductID,
		ev.Kind,
		ev.Timestamp.Format(time.RFC3339Nano),
		formatOptInt(ev.Quantity),
		formatOptFloat(ev.Value),
		formatOptFloat(ev.Rating),
		ev.Review,
		ev.Sentiment,
		ev.SocialSharePlatform,
		encodeMetadata(ev.Metadata),
	}
	if err := l.writeRow(row); err != nil {
		return "", err
	}
	l.index.add(ev)
	return ev.ID, nil
}

// writeRow must be called with mu held, or before the log is shared.
func (l *CSVLog) writeRow(row []string) error {
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("%w: write row: %w", ErrTransientIO, err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("%w: flush: %w", ErrTransientIO, err)
	}
	if l.sync {
		if err := l.f.Sync(); err != nil {
			return fmt.Errorf("%w: sync: %w", ErrTransientIO, err)
		}
	}
	return nil
}

// ByUser returns the user's events, newest first.
func (l *CSVLog) ByUser(ctx context.Context, userID string, limit int) ([]Event, error) {
	return l.index.ByUser(ctx, userID, limit)
}

// ByProduct returns the product's events, newest first.
func (l *CSVLog) ByProduct(ctx context.Context, productID string, limit int) ([]Event, error) {
	return l.index.ByProduct(ctx, productID, limit)
}

// Events returns events since the given time in chronological order.
func (l *CSVLog) Events(ctx context.Context, since time.Time) ([]Event, error) {
	return l.index.Events(ctx, since)
}

// Len returns the number of events.
func (l *CSVLog) Len(ctx context.Context) (int, error) {
	return l.index.Len(ctx)
}

// Backend returns "csv".
func (l *CSVLog) Backend() string { return "csv" }

// Close flushes and closes the file.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.w.Flush()
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrTransientIO, err)
	}
	return nil
}

var _ Log = (*CSVLog)(nil)
