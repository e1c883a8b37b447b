// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Metadata keys set on every interaction message.
const (
	MetadataCategory      = "category"
	MetadataInteractionID = "interaction_id"
)

// Interaction is the payload published after an interaction is stored.
type Interaction struct {
	ID        string         `json:"interaction_id"`
	Category  string         `json:"category"`
	UserID    string         `json:"user_id"`
	ProductID string         `json:"product_id,omitempty"`
	Kind      string         `json:"interaction_type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage encodes ev as a watermill message with a fresh UUID.
func NewMessage(ev *Interaction) (*message.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode interaction %s: %w", ev.ID, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataCategory, ev.Category)
	msg.Metadata.Set(MetadataInteractionID, ev.ID)
	return msg, nil
}

// Decode parses the payload of msg.
func Decode(msg *message.Message) (Interaction, error) {
	var ev Interaction
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return Interaction{}, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return ev, nil
}
