// Package store provides the coordination primitives shared across relay
// instances: a lock surface (SetNX/Delete) for the single-active-stream flag
// and pub/sub for stream cancellation signals.
package store

import (
	"time"
)

// Message represents a message received from a subscription.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription represents an active subscription to a channel.
type Subscription interface {
	// Channel returns the channel for receiving messages.
	Channel() <-chan *Message
	// Close unsubscribes and releases resources.
	Close() error
}

// Store defines the interface for the cross-instance coordination store.
type Store interface {
	// SetNX sets a key only if it does not already exist. Returns true when
	// the value was set. ttl <= 0 means no expiry.
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a key.
	Delete(key string) error

	// Publish sends a message to all subscribers of a channel.
	Publish(channel string, message []byte) error

	// Subscribe listens for messages on a channel.
	Subscribe(channel string) (Subscription, error)

	// Close releases any resources held by the store.
	Close() error
}
