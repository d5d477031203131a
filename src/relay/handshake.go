package relay

import (
	"github.com/mosaicnetworks/reflector/src/events"
)

// handshakeWatchdog gives the rendezvous server HandshakeAttempts intervals to
// announce the peer. On timeout the user is alerted, the registration is
// withdrawn and the session is torn down.
func (r *Runtime) handshakeWatchdog() {
	for attempt := 0; ; attempt++ {
		if r.Peer() != nil {
			r.logger.WithField("attempts", attempt).Debug("Handshake complete")
			return
		}

		if attempt >= r.conf.HandshakeAttempts {
			break
		}

		select {
		case <-r.ctx.Done():
			return
		case <-r.clock.After(r.conf.HandshakeInterval):
		}
	}

	if r.ctx.Err() != nil {
		return
	}

	r.logger.Warn("Handshake timed out")

	r.sink.Alert(events.ErrorAlert(HandshakeTimeoutTitle, HandshakeTimeoutDescription))

	if err := r.server.Register(true); err != nil {
		r.logger.WithError(err).Warn("Withdrawing registration")
	}

	r.shutdown(ReasonHandshakeTimeout)
}
