package relay

import (
	"fmt"
	"net"

	"github.com/mosaicnetworks/reflector/src/events"
	"github.com/mosaicnetworks/reflector/src/wire"
	"github.com/sirupsen/logrus"
)

// localLoop reads the local socket, on which both the rendezvous server and
// the peer send.
func (r *Runtime) localLoop() error {
	buf := make([]byte, maxDatagramSize)

	for {
		n, from, err := r.localConn.ReadFromUDP(buf)
		if err != nil {
			if r.ctx.Err() != nil {
				return nil
			}
			r.logger.WithError(err).Error("Local socket")
			r.sink.Log(fmt.Sprintf("local recv error: %v", err))
			return err
		}

		r.handleLocal(from, buf[:n])
	}
}

func (r *Runtime) handleLocal(from *net.UDPAddr, datagram []byte) {
	d := r.framing.Classify(from, datagram)

	switch d.Kind {
	case wire.EnvelopeKind:
		r.handleEnvelope(d.Envelope)
	case wire.Control:
		r.stats.controlReceived.Add(1)
		r.ensureKeepalive()
	case wire.Data:
		r.forwardToEmulator(d.Payload)
	default:
		r.stats.dropped.Add(1)
	}
}

func (r *Runtime) handleEnvelope(env *wire.Envelope) {
	addr, err := env.Peer.UDPAddr()
	if err != nil {
		r.logger.WithError(err).Warn("Ignoring envelope")
		return
	}

	if r.setPeer(addr, env.MatchID) {
		r.logger.WithFields(logrus.Fields{
			"peer":     addr.String(),
			"match_id": env.MatchID,
		}).Info("Peer learned")
		r.sink.Log(fmt.Sprintf("Opponent endpoint %s", addr))

		r.sendToPeer(wire.Control, wire.Ping)
	}

	r.ensureKeepalive()
}

func (r *Runtime) forwardToEmulator(payload []byte) {
	n, err := r.emuConn.WriteToUDP(payload, r.gameAddr)
	if err != nil {
		r.logger.WithError(err).Debug("Forwarding to emulator")
		return
	}

	r.stats.packetsToEmulator.Add(1)
	r.stats.bytesToEmulator.Add(uint64(n))
}

// emulatorLoop reads the emulator socket and relays everything to the peer.
func (r *Runtime) emulatorLoop() error {
	buf := make([]byte, maxDatagramSize)

	for {
		n, _, err := r.emuConn.ReadFromUDP(buf)
		if err != nil {
			if r.ctx.Err() != nil {
				return nil
			}
			r.logger.WithError(err).Error("Emulator socket")
			r.sink.Log(fmt.Sprintf("emu recv error: %v", err))
			return err
		}

		r.sendToPeer(wire.Data, buf[:n])
	}
}

// sendToPeer is shared by the emulator loop and the keepalive task. Without a
// peer the payload is dropped. The first send launches the emulator.
func (r *Runtime) sendToPeer(kind wire.Kind, payload []byte) {
	peer := r.Peer()
	if peer == nil {
		r.stats.dropped.Add(1)
		return
	}

	if !r.ensureEmulator() {
		return
	}

	n, err := r.localConn.WriteToUDP(r.framing.Encode(kind, payload), peer)
	if err != nil {
		if r.ctx.Err() == nil {
			r.logger.WithError(err).Debug("Sending to peer")
		}
		return
	}

	r.stats.packetsToPeer.Add(1)
	r.stats.bytesToPeer.Add(uint64(n))
}

// ensureEmulator launches the emulator if it was never launched. It returns
// false if the launch failed, in which case the session is torn down.
func (r *Runtime) ensureEmulator() bool {
	started, err := r.emulator.Launch(r.command)
	if err != nil {
		r.logger.WithError(err).Error(LaunchFailedTitle)
		r.sink.Alert(events.ErrorAlert(LaunchFailedTitle, err.Error()))
		if err := r.server.Register(true); err != nil {
			r.logger.WithError(err).Warn("Withdrawing registration")
		}
		r.shutdown(ReasonLaunchFailed)
		return false
	}

	if started {
		r.sink.Alert(events.InfoAlert(LaunchTitle, "Starting "+r.command.Path))
		r.sink.Log(fmt.Sprintf("Starting emulator %s (listen:%d game:%d)",
			r.command.Path, r.EmulatorPort(), r.params.GamePort()))
	}

	return true
}

func (r *Runtime) onEmulatorExit(err error) {
	if err != nil {
		r.sink.Log(fmt.Sprintf("Emulator status unavailable: %v", err))
	} else {
		r.sink.Log("Emulator exited")
	}
	r.shutdown(ReasonEmulatorExited)
}
