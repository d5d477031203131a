package relay

import "sync/atomic"

// Stats counts the traffic of a session.
type Stats struct {
	PacketsToPeer     uint64 `json:"packets_to_peer"`
	BytesToPeer       uint64 `json:"bytes_to_peer"`
	PacketsToEmulator uint64 `json:"packets_to_emulator"`
	BytesToEmulator   uint64 `json:"bytes_to_emulator"`
	ControlReceived   uint64 `json:"control_received"`
	// Dropped counts datagrams discarded because the peer was unknown, or
	// that matched no category.
	Dropped uint64 `json:"dropped"`
}

type counters struct {
	packetsToPeer     atomic.Uint64
	bytesToPeer       atomic.Uint64
	packetsToEmulator atomic.Uint64
	bytesToEmulator   atomic.Uint64
	controlReceived   atomic.Uint64
	dropped           atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		PacketsToPeer:     c.packetsToPeer.Load(),
		BytesToPeer:       c.bytesToPeer.Load(),
		PacketsToEmulator: c.packetsToEmulator.Load(),
		BytesToEmulator:   c.bytesToEmulator.Load(),
		ControlReceived:   c.controlReceived.Load(),
		Dropped:           c.dropped.Load(),
	}
}
