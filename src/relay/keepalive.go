package relay

import (
	"context"

	"github.com/mosaicnetworks/reflector/src/wire"
)

// ensureKeepalive starts the keepalive task unless it is already running or
// the session is closed.
func (r *Runtime) ensureKeepalive() {
	r.mu.Lock()
	if r.keepalive != nil || r.state == Closed {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(r.ctx)
	r.keepalive = cancel
	r.mu.Unlock()

	r.logger.Debug("Starting keepalive")

	go r.keepaliveLoop(ctx)
}

// keepaliveLoop pings the peer immediately, then once per interval, so that
// the NAT mappings on both sides stay open.
func (r *Runtime) keepaliveLoop(ctx context.Context) {
	ticker := r.clock.Ticker(r.conf.KeepaliveInterval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		r.sendToPeer(wire.Control, wire.Ping)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
