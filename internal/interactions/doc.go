// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Package interactions is the durable, append-only log of user interaction
events and the queries served from it.

# Backends

All backends implement Log and are selected by interactions.backend:

  - csv: one append-only file in the original column layout
    (interactionId, userId, productId, interactionType, timestamp, quantity,
    value, rating, review, sentiment, socialSharePlatform, metadata). Each
    Append writes and flushes a single row under a mutex; the file is never
    rewritten. Rows are mirrored in memory for queries.
  - badger: dgraph-io/badger/v4. Each event is stored under evt:<id> with
    secondary keys user:<uid>:<inverted ts>:<id> and
    product:<pid>:<inverted ts>:<id> written in the same transaction, so a
    prefix scan yields newest-first history without sorting.
  - duckdb: duckdb-go/v2 table "interactions" with metadata as JSON text.
  - memory: no persistence; tests and ephemeral runs.

# Guarantees

Append assigns the id and timestamp when they are empty and is safe for
concurrent use: N concurrent appends produce N entries with N distinct
ids. ByUser and ByProduct return newest first and at most limit entries;
Events returns chronological order. Metadata is stored as JSON and
re-parsed on read; unreadable metadata becomes an empty map.

Backend failures are wrapped with ErrTransientIO.
*/
package interactions
