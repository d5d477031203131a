// Package wire defines the messages exchanged with the rendezvous server and
// the framing of datagrams exchanged with the peer.
//
// Control messages are JSON, encoded with the ugorji codec. Registration goes
// to the server; Envelope comes back from it and announces the opponent's
// public endpoint. Datagrams from the peer are either liveness pings or opaque
// game data; the Framing decides which.
package wire
