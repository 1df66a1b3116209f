package models

import (
	"fmt"
	"math/rand/v2"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

const (
	PrefixEvent       Prefix = "evt"
	PrefixTransaction Prefix = "txn"
	PrefixGuest       Prefix = "gst"
)

// NewID generates a K-sortable, URL-safe ID in the form "prefix_suffix".
// It panics if prefix is not a valid TypeID prefix (programming error).
func NewID(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("models: invalid id prefix %q: %v", prefix, err))
	}
	return tid.String()
}

// NewEventID generates a new event ID.
func NewEventID() string { return NewID(PrefixEvent) }

// NewTransactionID generates a new transaction ID.
func NewTransactionID() string { return NewID(PrefixTransaction) }

// NewGuestID generates an identity for a guest added by an admin.
func NewGuestID() string { return NewID(PrefixGuest) }

// NewCircleCode returns a random 6-digit join code.
func NewCircleCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}
