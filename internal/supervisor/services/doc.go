// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package services holds suture.Service wrappers for KMart components
// that do not already expose a Serve(ctx) method.
//
//   - HTTPServerService drains an *http.Server on shutdown.
//   - TrainerService retrains the collaborative model at startup, on an
//     interval and after enough new interactions, and announces each new
//     model on the websocket feed.
//   - BadgerGCService runs value log GC for the Badger interaction log.
//
// The websocket hub and the event router implement suture.Service
// themselves and are added to the tree directly.
package services
