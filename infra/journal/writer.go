package journal

import (
	"context"
	"time"

	"github.com/kilianp07/evcharge/infra/logger"
	"github.com/kilianp07/evcharge/internal/eventbus"
)

// StartWriter appends every Record published on bus to store until ctx is
// canceled. Write failures are logged and the record is dropped.
func StartWriter(ctx context.Context, bus *eventbus.Bus, store Store, log logger.Logger) <-chan struct{} {
	if log == nil {
		log = logger.NopLogger{}
	}
	return eventbus.Consume[eventbus.Event](ctx, bus, func(ev eventbus.Event) {
		rec, ok := ev.(Record)
		if !ok {
			return
		}
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Append(wctx, rec); err != nil {
			log.Errorf("journal append %s: %v", rec.Kind, err)
		}
	})
}
