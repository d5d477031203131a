package wire

import (
	"bytes"
	"fmt"
	"net"
	"strconv"

	"github.com/ugorji/go/codec"
)

// PeerEndpoint is the public address of the opponent as observed by the
// rendezvous server.
type PeerEndpoint struct {
	Address string `json:"address"`
	Port    uint16 `json:"port"`
}

// UDPAddr parses the endpoint into a UDP address. Only IP literals are
// accepted.
func (p PeerEndpoint) UDPAddr() (*net.UDPAddr, error) {
	ip := net.ParseIP(p.Address)
	if ip == nil {
		return nil, fmt.Errorf("invalid peer address %q", p.Address)
	}
	if p.Port == 0 {
		return nil, fmt.Errorf("invalid peer port 0")
	}
	return &net.UDPAddr{IP: ip, Port: int(p.Port)}, nil
}

func (p PeerEndpoint) String() string {
	return net.JoinHostPort(p.Address, strconv.Itoa(int(p.Port)))
}

// Envelope is the control message sent by the rendezvous server to announce
// the opponent's endpoint.
type Envelope struct {
	MatchID string        `json:"matchId,omitempty"`
	Peer    *PeerEndpoint `json:"peer"`
}

// Registration is sent to the rendezvous server to register (Kill=false) or
// withdraw (Kill=true) a session.
type Registration struct {
	UID     string `json:"uid"`
	PeerUID string `json:"peerUid"`
	Kill    bool   `json:"kill"`
}

// Marshal returns the JSON encoding of the Registration.
func (r *Registration) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal parses a JSON encoded Registration.
func (r *Registration) Unmarshal(data []byte) error {
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoderBytes(data, jh)

	return dec.Decode(r)
}

// DecodeEnvelope parses a datagram as an Envelope. It fails unless the
// datagram is a JSON object carrying a peer with a non-empty address and a
// port in 1..65535.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	env := new(Envelope)
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoderBytes(trimmed, jh)
	if err := dec.Decode(env); err != nil {
		return nil, err
	}

	if env.Peer == nil {
		return nil, fmt.Errorf("envelope without peer")
	}
	if env.Peer.Address == "" {
		return nil, fmt.Errorf("envelope without peer address")
	}
	if env.Peer.Port == 0 {
		return nil, fmt.Errorf("envelope without peer port")
	}

	return env, nil
}

// Marshal returns the JSON encoding of the Envelope. It is used by tests and
// tools that play the part of the rendezvous server.
func (e *Envelope) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(e); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
