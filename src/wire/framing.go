package wire

import (
	"bytes"
	"fmt"
	"net"
)

// Kind classifies a datagram received on the session's local socket.
type Kind uint8

const (
	// Ignore is a datagram that is neither control nor game data.
	Ignore Kind = iota
	// EnvelopeKind is a peer announcement from the rendezvous server.
	EnvelopeKind
	// Control is a liveness signal (ping) from the peer.
	Control
	// Data is an opaque game datagram.
	Data
)

func (k Kind) String() string {
	switch k {
	case EnvelopeKind:
		return "Envelope"
	case Control:
		return "Control"
	case Data:
		return "Data"
	default:
		return "Ignore"
	}
}

// Ping is the liveness payload exchanged between peers.
var Ping = []byte("ping")

var portMarker = []byte(`"port"`)

// Datagram is the result of classifying an incoming datagram.
type Datagram struct {
	Kind     Kind
	Envelope *Envelope
	// Payload is the part of the datagram to forward to the emulator when
	// Kind is Data.
	Payload []byte
}

// Framing classifies incoming datagrams and frames outgoing ones.
type Framing interface {
	// Classify inspects a datagram received from the given address.
	Classify(from *net.UDPAddr, datagram []byte) Datagram
	// Encode frames a payload of the given kind for the peer.
	Encode(kind Kind, payload []byte) []byte
	// Name returns the configuration name of the framing.
	Name() string
}

// NewFraming returns the framing registered under name. server is the
// rendezvous server address, used by framings that identify envelopes by
// source.
func NewFraming(name string, server *net.UDPAddr) (Framing, error) {
	switch name {
	case "", "legacy":
		return LegacyFraming{}, nil
	case "tagged":
		return &TaggedFraming{Server: server}, nil
	default:
		return nil, fmt.Errorf("unknown framing %q", name)
	}
}

// LegacyFraming sends payloads byte-for-byte and classifies by content, which
// is what deployed peers and rendezvous servers expect. A game datagram that
// happens to contain the bytes "port" is treated as control and never reaches
// the emulator.
type LegacyFraming struct{}

// Classify implements Framing.
func (LegacyFraming) Classify(from *net.UDPAddr, datagram []byte) Datagram {
	if env, err := DecodeEnvelope(datagram); err == nil {
		return Datagram{Kind: EnvelopeKind, Envelope: env}
	}

	if bytes.Equal(datagram, Ping) || bytes.Contains(datagram, portMarker) {
		return Datagram{Kind: Control}
	}

	return Datagram{Kind: Data, Payload: datagram}
}

// Encode implements Framing.
func (LegacyFraming) Encode(kind Kind, payload []byte) []byte {
	return payload
}

// Name implements Framing.
func (LegacyFraming) Name() string {
	return "legacy"
}

// Type bytes of the tagged framing.
const (
	TagControl byte = 0x01
	TagData    byte = 0x02
)

// TaggedFraming prefixes every datagram exchanged between peers with a type
// byte, so that any game payload can be relayed. Envelopes are only accepted
// from the rendezvous server address.
type TaggedFraming struct {
	Server *net.UDPAddr
}

// Classify implements Framing.
func (f *TaggedFraming) Classify(from *net.UDPAddr, datagram []byte) Datagram {
	if f.fromServer(from) {
		env, err := DecodeEnvelope(datagram)
		if err != nil {
			return Datagram{Kind: Ignore}
		}
		return Datagram{Kind: EnvelopeKind, Envelope: env}
	}

	if len(datagram) == 0 {
		return Datagram{Kind: Ignore}
	}

	switch datagram[0] {
	case TagControl:
		return Datagram{Kind: Control}
	case TagData:
		return Datagram{Kind: Data, Payload: datagram[1:]}
	default:
		return Datagram{Kind: Ignore}
	}
}

// Encode implements Framing.
func (f *TaggedFraming) Encode(kind Kind, payload []byte) []byte {
	tag := TagData
	if kind == Control {
		tag = TagControl
	}
	framed := make([]byte, len(payload)+1)
	framed[0] = tag
	copy(framed[1:], payload)
	return framed
}

// Name implements Framing.
func (f *TaggedFraming) Name() string {
	return "tagged"
}

func (f *TaggedFraming) fromServer(from *net.UDPAddr) bool {
	if f.Server == nil || from == nil {
		return false
	}
	return from.Port == f.Server.Port && from.IP.Equal(f.Server.IP)
}
