package app

import (
	"context"
	"time"

	"github.com/vantos/triarb/business/session/domain"
	"github.com/vantos/triarb/internal/wsconn"
)

// supervisionInterval is the supervisory reconnect timer's period
// (spec.md §4.3).
const supervisionInterval = 2500 * time.Millisecond

// RequiredBooks is a closure that resubscribes every book channel the
// engine needs, used by the supervisor after a reconnect or a
// maintenance-mode exit.
type RequiredBooks func(ctx context.Context, conn *Controller) error

// Supervise runs the supervisory reconnect timer until ctx is done. On
// every tick, if the connection is not in the Connected state it
// clears the Subscription Registry, reconnects, re-authenticates, and
// resubscribes all required books. The registry is cleared before
// resubscribing because the venue does not carry channel assignments
// across a dropped connection, so any confirmed state left over from
// before the drop would stale-match incoming chan_ids.
func Supervise(ctx context.Context, c *Controller, resubscribe RequiredBooks) {
	ticker := time.NewTicker(supervisionInterval)
	defer ticker.Stop()

	c.OnInfo(func(ctx context.Context, code domain.InfoCode) {
		if code != domain.InfoMaintenanceEnd {
			return
		}
		c.subs.Reset()
		if err := c.Connect(ctx); err != nil {
			c.log.Error(ctx, "session: re-auth after maintenance failed", "error", err)
			return
		}
		if err := resubscribe(ctx, c); err != nil {
			c.log.Error(ctx, "session: resubscribe after maintenance failed", "error", err)
		}
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.conn.State() == wsconn.StateConnected {
				continue
			}
			c.subs.Reset()
			if err := c.Connect(ctx); err != nil {
				c.log.Warn(ctx, "session: supervisory reconnect failed", "error", err)
				continue
			}
			if err := resubscribe(ctx, c); err != nil {
				c.log.Error(ctx, "session: resubscribe after reconnect failed", "error", err)
			}
		}
	}
}
