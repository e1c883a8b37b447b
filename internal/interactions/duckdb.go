// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	// DuckDB driver registration
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"
)

var duckdbSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS interactions_seq START 1`,
	`CREATE TABLE IF NOT EXISTS interactions (
	seq                   BIGINT DEFAULT nextval('interactions_seq'),
	interaction_id        VARCHAR PRIMARY KEY,
	user_id               VARCHAR NOT NULL,
	product_id            VARCHAR NOT NULL,
	interaction_type      VARCHAR NOT NULL,
	ts_ns                 BIGINT NOT NULL,
	quantity              INTEGER,
	event_value           DOUBLE,
	rating                DOUBLE,
	review                VARCHAR,
	sentiment             VARCHAR,
	social_share_platform VARCHAR,
	metadata              VARCHAR
)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_product ON interactions (product_id)`,
}

const duckdbColumns = `interaction_id, user_id, product_id, interaction_type, ts_ns,
	quantity, event_value, rating, review, sentiment, social_share_platform, metadata`

// DuckDBLog stores events in a DuckDB table.
type DuckDBLog struct {
	conn    *sql.DB
	writeMu sync.Mutex
	now     func() time.Time
}

// OpenDuckDB opens the database file at path (":memory:" for a
// throwaway database) and creates the schema.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenDuckDB(ctx context.Context, path string, logger zerolog.Logger) (*DuckDBLog, error) {
	dsn := path
	if dsn == ":memory:" {
		dsn = ""
	}
	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open duckdb: %w", ErrTransientIO, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: ping duckdb: %w", ErrTransientIO, err)
	}
	for _, stmt := range duckdbSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%w: create schema: %w", ErrTransientIO, err)
		}
	}

	l := &DuckDBLog{conn: conn, now: time.Now}
	if n, err := l.Len(ctx); err == nil {
		logger.Info().Str("path", path).Int("events", n).Msg("Interaction log opened")
	}
	return l, nil
}

// Append inserts one row. Writes are serialized.
func (l *DuckDBLog) Append(ctx context.Context, e *Event) (string, error) {
	ev := prepare(e, l.now())

	var quantity sql.NullInt64
	if ev.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*ev.Quantity), Valid: true}
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO interactions (`+duckdbColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, ev.ProductID, ev.Kind, ev.Timestamp.UnixNano(),
		quantity, nullFloat(ev.Value), nullFloat(ev.Rating),
		ev.Review, ev.Sentiment, ev.SocialSharePlatform, encodeMetadata(ev.Metadata),
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert: %w", ErrTransientIO, err)
	}
	return ev.ID, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// ByUser returns the user's events, newest first.
func (l *DuckDBLog) ByUser(ctx context.Context, userID string, limit int) ([]Event, error) {
	if limit <= 0 {
		return []Event{}, nil
	}
	return l.query(ctx,
		`SELECT `+duckdbColumns+` FROM interactions WHERE user_id = ? ORDER BY ts_ns DESC, seq DESC LIMIT ?`,
		userID, limit)
}

// ByProduct returns the product's events, newest first.
func (l *DuckDBLog) ByProduct(ctx context.Context, productID string, limit int) ([]Event, error) {
	if limit <= 0 {
		return []Event{}, nil
	}
	return l.query(ctx,
		`SELECT `+duckdbColumns+` FROM interactions WHERE product_id = ? ORDER BY ts_ns DESC, seq DESC LIMIT ?`,
		productID, limit)
}

// Events returns events since the given time, oldest first.
func (l *DuckDBLog) Events(ctx context.Context, since time.Time) ([]Event, error) {
	if since.IsZero() {
		return l.query(ctx, `SELECT `+duckdbColumns+` FROM interactions ORDER BY ts_ns, seq`)
	}
	return l.query(ctx,
		`SELECT `+duckdbColumns+` FROM interactions WHERE ts_ns > ? ORDER BY ts_ns, seq`,
		since.UnixNano())
}

func (l *DuckDBLog) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	rows, err := l.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrTransientIO, err)
	}
	defer func() { _ = rows.Close() }()

	out := []Event{}
	for rows.Next() {
		var (
			ev                          Event
			tsNS                        int64
			quantity                    sql.NullInt64
			value, rating               sql.NullFloat64
			review, sentiment, platform sql.NullString
			metadata                    sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ProductID, &ev.Kind, &tsNS,
			&quantity, &value, &rating, &review, &sentiment, &platform, &metadata); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrTransientIO, err)
		}
		ev.Timestamp = time.Unix(0, tsNS).UTC()
		if quantity.Valid {
			q := int(quantity.Int64)
			ev.Quantity = &q
		}
		if value.Valid {
			v := value.Float64
			ev.Value = &v
		}
		if rating.Valid {
			r := rating.Float64
			ev.Rating = &r
		}
		ev.Review = review.String
		ev.Sentiment = sentiment.String
		ev.SocialSharePlatform = platform.String
		ev.Metadata = decodeMetadata(metadata.String)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", ErrTransientIO, err)
	}
	return out, nil
}

// Len returns the row count.
func (l *DuckDBLog) Len(ctx context.Context) (int, error) {
	var n int
	if err := l.conn.QueryRowContext(ctx, `SELECT count(*) FROM interactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrTransientIO, err)
	}
	return n, nil
}

// Backend returns "duckdb".
func (l *DuckDBLog) Backend() string { return "duckdb" }

// Close closes the database.
func (l *DuckDBLog) Close() error {
	if err := l.conn.Close(); err != nil {
		return fmt.Errorf("%w: close duckdb: %w", ErrTransientIO, err)
	}
	return nil
}

var _ Log = (*DuckDBLog)(nil)
