// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type (
	correlationKey struct{}
	requestKey     struct{}
)

// ctxFields are copied from the context onto every Ctx logger, in order.
var ctxFields = []struct {
	name string
	get  func(context.Context) string
}{
	{"correlation_id", CorrelationIDFromContext},
	{"request_id", RequestIDFromContext},
}

// GenerateCorrelationID returns a short id for grouping log lines of one
// logical operation.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

// GenerateRequestID returns a UUID for the X-Request-ID header.
func GenerateRequestID() string {
	return uuid.NewString()
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns "" when ctx carries none.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

// RequestIDFromContext returns "" when ctx carries none.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestKey{}).(string)
	return id
}

// Ctx returns the global logger tagged with the ids carried by ctx.
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("search failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}

// CtxWith is Ctx for callers that add their own fields first.
func CtxWith(ctx context.Context) zerolog.Context {
	zc := With()
	for _, f := range ctxFields {
		if v := f.get(ctx); v != "" {
			zc = zc.Str(f.name, v)
		}
	}
	return zc
}
