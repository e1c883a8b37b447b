// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// idTimeLayout renders YYYYmmdd_HHMMSS.
const idTimeLayout = "20060102_150405"

// NewEventID returns int_<YYYYmmdd>_<HHMMSS>_<user>_<8 hex>. The random
// suffix keeps ids unique when one user appends twice within a second.
func NewEventID(now time.Time, userID string) string {
	return formatEventID(now, userID, uuid.New())
}

// legacyEventID names a stored row that has no interactionId. The suffix
// is derived from the row's line and contents, so replaying the same file
// yields the same id.
func legacyEventID(line int, ev *Event) string {
	name := strconv.Itoa(line) + "|" + ev.Timestamp.UTC().Format(time.RFC3339Nano) + "|" +
		ev.UserID + "|" + ev.ProductID + "|" + ev.Kind
	return formatEventID(ev.Timestamp, ev.UserID, uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)))
}

func formatEventID(ts time.Time, userID string, u uuid.UUID) string {
	suffix := strings.ReplaceAll(u.String(), "-", "")[:8]

	var b strings.Builder
	b.Grow(4 + len(idTimeLayout) + 1 + len(userID) + 1 + len(suffix))
	b.WriteString("int_")
	b.WriteString(ts.Format(idTimeLayout))
	b.WriteByte('_')
	b.WriteString(userID)
	b.WriteByte('_')
	b.WriteString(suffix)
	return b.String()
}

// prepare returns a copy of e with id, timestamp and metadata filled in.
// Metadata is normalized through JSON so every backend returns the same shapes.
func prepare(e *Event, now time.Time) Event {
	out := *e
	if out.Timestamp.IsZero() {
		out.Timestamp = now
	}
	if out.ID == "" {
		out.ID = NewEventID(out.Timestamp, out.UserID)
	}
	out.Metadata = decodeMetadata(encodeMetadata(out.Metadata))
	return out
}
