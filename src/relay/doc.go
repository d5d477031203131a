// Package relay implements a peer-to-peer UDP session between a local
// emulator and a remote peer.
//
// A Runtime registers with a rendezvous server over its local socket, learns
// the peer's public endpoint from the server's reply, and then relays game
// datagrams in both directions:
//
//  peer <-> local socket (0.0.0.0:any) <-> relay <-> emulator socket (127.0.0.1:7001) <-> emulator (127.0.0.1:7000)
//
// A keepalive task pings the peer every second to keep the NAT mappings open.
// If the server does not announce a peer within the handshake window, the
// session gives up. The emulator process is launched the first time something
// is sent to the peer, and the session ends when it exits.
//
// Whatever ends a session (Stop, handshake timeout, emulator exit, launch
// failure) goes through the same teardown, and the end-of-match notification
// is sent exactly once.
package relay
