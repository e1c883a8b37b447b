// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Catalog CSV column names.
const (
	colID               = "id"
	colName             = "name"
	colDescription      = "description"
	colPriceAndDiscount = "priceAndDiscount"
	colPrice            = "price"
	colRating           = "rating"
	colCategory         = "category"
	colCondition        = "condition"
	colLocation         = "location"
)

// LoadCSV reads a catalog file. Columns are addressed by header name;
// unknown columns are ignored. Rows without an id are skipped.
func LoadCSV(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	products, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return NewStore(products), nil
}

// ReadCSV parses catalog rows from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		// The first column may carry a UTF-8 BOM.
		cols[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	if _, ok := cols[colID]; !ok {
		return nil, fmt.Errorf("missing %q column", colID)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var products []Product
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := Product{
			ID:          field(rec, colID),
			Name:        field(rec, colName),
			Description: field(rec, colDescription),
			Category:    field(rec, colCategory),
			Condition:   field(rec, colCondition),
			Location:    field(rec, colLocation),
			Rating:      parseRating(field(rec, colRating)),
		}
		if p.ID == "" {
			continue
		}
		if raw := field(rec, colPriceAndDiscount); raw != "" {
			p.Price = ExtractPrice(raw)
		} else {
			p.Price = ExtractPrice(field(rec, colPrice))
		}
		products = append(products, p)
	}
	return products, nil
}

// parseRating returns the neutral rating 0 for absent or malformed values.
func parseRating(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitizePrice(v)
}

// Load reads the catalog at path. When the file does not exist and
// fallback is set, the built-in fixture is returned instead.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Load(ctx context.Context, path string, fallback bool, logger zerolog.Logger) (*Store, error) {
	store, err := LoadCSV(ctx, path)
	if err == nil {
		logger.Info().Str("path", path).Int("products", store.Len()).Msg("Catalog loaded")
		return store, nil
	}
	if fallback && errors.Is(err, fs.ErrNotExist) {
		store = Default()
		logger.Warn().Str("path", path).Int("products", store.Len()).
			Msg("Catalog file not found, using built-in catalog")
		return store, nil
	}
	return nil, err
}
