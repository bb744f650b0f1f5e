package support

import (
	"context"

	"innkeep/internal/app/outbox"
	"innkeep/internal/domain/shared/events"
)

// EventSource is the slice of an aggregate the handlers care about when
// moving domain events into the outbox.
type EventSource interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// RecordEvents drains pending events from each aggregate into the outbox.
func RecordEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, sources ...EventSource) error {
	for _, src := range sources {
		evs := src.PendingEvents()
		src.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, encoder, evs); err != nil {
			return err
		}
	}
	return nil
}
