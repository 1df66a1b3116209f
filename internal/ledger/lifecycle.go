package ledger

import (
	"fmt"

	"github.com/mmynk/circlewallet/internal/models"
)

// Mutation is a kind of write against an event.
type Mutation string

const (
	MutCreate Mutation = "create"
	MutEdit   Mutation = "edit"
	MutDelete Mutation = "delete"
	MutFlip   Mutation = "flip"
	MutClose  Mutation = "close"
)

// CheckMutation reports whether an event in status accepts m.
// Active events accept everything; closed events accept nothing.
func CheckMutation(status models.EventStatus, m Mutation) error {
	switch status {
	case models.EventActive:
		return nil
	case models.EventClosed:
		if m == MutClose {
			return ErrAlreadyClosed
		}
		return ErrEventClosed
	default:
		return fmt.Errorf("ledger: unknown event status %q", status)
	}
}

// Transition validates an event status change. active -> closed is the only edge.
func Transition(from, to models.EventStatus) error {
	switch {
	case from == models.EventActive && to == models.EventClosed:
		return nil
	case from == models.EventClosed && to == models.EventClosed:
		return ErrAlreadyClosed
	case from == models.EventClosed:
		return fmt.Errorf("%w: closed events cannot be reopened", ErrEventClosed)
	default:
		return fmt.Errorf("ledger: invalid transition %s -> %s", from, to)
	}
}
