// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import "errors"

var (
	// ErrNotFound is returned when a referenced product does not exist.
	ErrNotFound = errors.New("not found")

	// ErrComputation marks a failed model or vector path. Chains fall
	// through to the next strategy on it.
	ErrComputation = errors.New("ranking computation failed")

	// ErrTrainingInProgress is returned by Train while another run is active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrInsufficientData is returned by Train when the log holds fewer
	// usable interactions than configured.
	ErrInsufficientData = errors.New("insufficient interactions for training")

	// errNoSignal means a strategy ran but had nothing to rank.
	errNoSignal = errors.New("no signal")
)
