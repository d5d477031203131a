// Package history keeps a record of finished sessions.
package history

import (
	"bytes"
	"time"

	"github.com/ugorji/go/codec"
)

// Record describes a finished session.
type Record struct {
	SessionID     string    `json:"session_id"`
	MatchID       string    `json:"match_id"`
	MyUID         string    `json:"my_uid"`
	PeerUID       string    `json:"peer_uid"`
	Peer          string    `json:"peer"`
	Framing       string    `json:"framing"`
	Reason        string    `json:"reason"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	PacketsToPeer uint64    `json:"packets_to_peer"`
	PacketsToEmu  uint64    `json:"packets_to_emulator"`
	BytesToPeer   uint64    `json:"bytes_to_peer"`
	BytesToEmu    uint64    `json:"bytes_to_emulator"`
	Dropped       uint64    `json:"dropped"`
}

// Marshal returns the JSON encoding of a Record.
func (r *Record) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal parses a JSON encoded Record.
func (r *Record) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(r)
}

// Store persists session records.
type Store interface {
	// Add appends a record.
	Add(r Record) error
	// List returns records in the order they were started.
	List() ([]Record, error)
	Close() error
}
