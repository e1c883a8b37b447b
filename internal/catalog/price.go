// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package catalog

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
)

// ExtractPrice converts a raw price into a non-negative float.
//
// Numbers are used as-is. Strings may carry a currency prefix or suffix
// ("Ugx 12,500", "$3.99", "12500 UGX") and comma thousands separators.
// Anything else, including nil, negative values, NaN and Inf, yields 0.
func ExtractPrice(raw any) float64 {
	var v float64
	switch x := raw.(type) {
	case nil:
		return 0
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case int32:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		v = f
	case string:
		v = parsePriceString(x)
	case *string:
		if x == nil {
			return 0
		}
		v = parsePriceString(*x)
	default:
		return 0
	}
	return sanitizePrice(v)
}

func sanitizePrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// parsePriceString strips a currency marker and thousands separators.
func parsePriceString(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimFunc(s, isCurrencyRune)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// isCurrencyRune matches currency letters and symbols around the amount.
// Digits, the decimal point and the minus sign are never stripped.
func isCurrencyRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Sc, r) || unicode.IsSpace(r)
}
