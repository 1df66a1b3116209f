package ledger

import (
	"context"
	"log/slog"

	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/storage"
)

// Watch streams a fresh EventView for the event: one immediately, then one
// after every committed change to the event or its circle's roster. Bursts
// of changes may be coalesced into a single view. The channel is closed
// when ctx is done.
func (l *Ledger) Watch(ctx context.Context, id auth.Identity, circleID, eventID string) (<-chan *EventView, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before the first read so no change between the two is missed.
	changes := l.store.Changes(ctx, circleID, eventID)

	first, err := l.EventSummary(ctx, id, circleID, eventID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan *EventView, 1)
	out <- first

	go func() {
		defer cancel()
		defer close(out)
		for range changes {
			view, err := l.EventSummary(ctx, id, circleID, eventID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("failed to refresh event view", "path", storage.EventPath(circleID, eventID), "error", err)
				continue
			}
			select {
			case out <- view:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
