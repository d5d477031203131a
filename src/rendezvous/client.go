// Package rendezvous implements the client side of the hole-punching
// handshake: registration and withdrawal of a session with the rendezvous
// server.
package rendezvous

import (
	"fmt"
	"net"

	"github.com/mosaicnetworks/reflector/src/wire"
	"github.com/sirupsen/logrus"
)

// PacketWriter is the part of a UDP socket the client needs. Registrations
// must leave through the same socket that will carry the game traffic, so that
// the server observes the NAT mapping the peer will use.
type PacketWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// Client sends registration messages to a rendezvous server.
type Client struct {
	conn    PacketWriter
	server  *net.UDPAddr
	uid     string
	peerUID string
	logger  *logrus.Entry
}

// NewClient returns a Client that registers uid as wishing to connect with
// peerUID.
func NewClient(conn PacketWriter, server *net.UDPAddr, uid, peerUID string, logger *logrus.Entry) *Client {
	return &Client{
		conn:    conn,
		server:  server,
		uid:     uid,
		peerUID: peerUID,
		logger:  logger,
	}
}

// ResolveServer resolves the rendezvous server address.
func ResolveServer(host string, port uint16) (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, fmt.Sprint(port)))
	if err != nil {
		return nil, fmt.Errorf("resolving rendezvous server: %w", err)
	}
	return addr, nil
}

// Server returns the address of the rendezvous server.
func (c *Client) Server() *net.UDPAddr {
	return c.server
}

// Register sends a single registration datagram. kill=true withdraws the
// registration. No acknowledgement is expected.
func (c *Client) Register(kill bool) error {
	reg := wire.Registration{
		UID:     c.uid,
		PeerUID: c.peerUID,
		Kill:    kill,
	}

	data, err := reg.Marshal()
	if err != nil {
		return err
	}

	if _, err := c.conn.WriteToUDP(data, c.server); err != nil {
		return fmt.Errorf("sending registration to %s: %w", c.server, err)
	}

	c.logger.WithFields(logrus.Fields{
		"server": c.server.String(),
		"kill":   kill,
	}).Debug("Registration sent")

	return nil
}
