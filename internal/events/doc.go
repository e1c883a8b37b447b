// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Package events carries tracked interactions between components over a
Watermill message bus.

Transports:
  - memory: watermill gochannel, in-process fan-out. The default.
  - nats: core NATS through watermill-nats. With embedded_nats the
    process starts its own nats-server and connects to it.

Every subscriber receives every message; there are no queue groups.
Delivery is best effort. A message published while nobody is
subscribed is dropped.

Consumers are registered on a Router, which runs as a supervised
service and decodes each message into an Interaction before calling
the consumer:

	router := events.NewRouter(bus, logger)
	router.AddConsumer("websocket-broadcast", hub.HandleInteraction)
	tree.AddMessagingService(router)
*/
package events
