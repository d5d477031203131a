package relay

import (
	"github.com/mosaicnetworks/reflector/src/events"
)

// Stop tears the session down and waits for the relay loops to return. It is
// idempotent. It must not be called from the session's own goroutines.
func (r *Runtime) Stop() error {
	r.shutdown(ReasonProxyStop)
	return r.loops.Wait()
}

// KillProcessOnly terminates the emulator but keeps the sockets and tasks
// running. The emulator is not launched again. If the kill fails, the
// emulator stays supervised and no end-of-match notification is sent.
func (r *Runtime) KillProcessOnly() error {
	killed, err := r.emulator.Kill()
	if err != nil {
		r.logger.WithError(err).Error("Killing emulator on request")
		return err
	}

	if killed {
		r.logger.Info("Emulator killed on request")
		r.notifyClosed(ReasonManualForce)
	}

	return nil
}

// shutdown is the single teardown path. Only the first call has an effect.
func (r *Runtime) shutdown(reason string) {
	r.mu.Lock()
	if r.state == Closed {
		r.mu.Unlock()
		return
	}
	r.state = Closed
	r.endedAt = r.clock.Now()
	stopKeepalive := r.keepalive
	r.keepalive = nil
	r.mu.Unlock()

	r.logger.WithField("reason", reason).Info("Stopping session")

	r.cancel()
	if stopKeepalive != nil {
		stopKeepalive()
	}

	if _, err := r.emulator.Stop(); err != nil {
		r.logger.WithError(err).Warn("Stopping emulator")
	}

	r.closeSockets()

	r.notifyClosed(reason)

	close(r.done)
}

// notifyClosed sends the end-of-match notification the first time it is
// called.
func (r *Runtime) notifyClosed(reason string) {
	if !r.notified.CompareAndSwap(false, true) {
		return
	}

	r.mu.Lock()
	r.reason = reason
	matchID := r.matchID
	r.mu.Unlock()

	r.sink.MatchEnded(events.MatchEnd{
		Reason:  reason,
		MatchID: matchID,
	})
}

func (r *Runtime) closeSockets() {
	if err := r.localConn.Close(); err != nil {
		r.logger.WithError(err).Debug("Closing local socket")
	}
	if err := r.emuConn.Close(); err != nil {
		r.logger.WithError(err).Debug("Closing emulator socket")
	}
}
