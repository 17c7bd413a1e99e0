package notify

import (
	"context"

	"github.com/go-pkgz/lgr"

	"workforce-mgmt/pkg/activity"
)

// Subscriber is the part of activity.Bus the relay needs.
type Subscriber interface {
	Subscribe() chan activity.Event
	Unsubscribe(ch chan activity.Event)
}

// Relay forwards bus events whose type is in types (all events when types is
// empty) to n until ctx is done. Delivery failures are logged and skipped.
func Relay(ctx context.Context, bus Subscriber, n Notifier, types []string, log lgr.L) {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if len(allowed) > 0 && !allowed[e.Type] {
				continue
			}
			if err := n.Notify(ctx, e); err != nil {
				log.Logf("[WARN] notify %s for task %d: %v", e.Type, e.TaskID, err)
			}
		}
	}
}
