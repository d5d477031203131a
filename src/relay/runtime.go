package relay

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/mosaicnetworks/reflector/src/common"
	"github.com/mosaicnetworks/reflector/src/config"
	"github.com/mosaicnetworks/reflector/src/emulator"
	"github.com/mosaicnetworks/reflector/src/events"
	"github.com/mosaicnetworks/reflector/src/rendezvous"
	"github.com/mosaicnetworks/reflector/src/wire"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Reasons reported in the end-of-match notification.
const (
	ReasonEmulatorExited   = "emulator-exited"
	ReasonProxyStop        = "proxy-stop"
	ReasonManualForce      = "manual-force"
	ReasonHandshakeTimeout = "handshake-timeout"
	ReasonLaunchFailed     = "launch-failed"
)

// User-facing alert texts.
const (
	HandshakeTimeoutTitle       = "Matchmaking timeout"
	HandshakeTimeoutDescription = "No response from the hole punching server. Please try again."
	LaunchFailedTitle           = "Emulator failed to open"
	LaunchTitle                 = "Emulator launching"
)

const maxDatagramSize = 65535

var loopback = net.IPv4(127, 0, 0, 1)

// Deps are the collaborators of a Runtime. Nil fields get defaults: a log
// sink, an os/exec launcher and no path resolution.
type Deps struct {
	Sink     events.Sink
	Launcher emulator.Launcher
	Resolver emulator.PathResolver
}

// Descriptor describes the sockets of a started session.
type Descriptor struct {
	SessionID    string `json:"session_id"`
	LocalAddr    string `json:"local"`
	EmulatorAddr string `json:"emu_listener"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("proxy started: local=%s emu_listener=%s", d.LocalAddr, d.EmulatorAddr)
}

// Runtime is one relay session. It owns two UDP sockets: the local socket,
// shared by the rendezvous exchange and the peer traffic, and the emulator
// socket on the loopback interface.
type Runtime struct {
	id     string
	params Params
	conf   *config.Config
	clock  clock.Clock
	sink   events.Sink
	logger *logrus.Entry

	localConn *net.UDPConn
	emuConn   *net.UDPConn
	gameAddr  *net.UDPAddr
	server    *rendezvous.Client
	framing   wire.Framing
	emulator  *emulator.Supervisor
	command   emulator.Command

	ctx    context.Context
	cancel context.CancelFunc
	loops  errgroup.Group

	// mu guards everything below. It is never held across socket I/O.
	mu        sync.Mutex
	state     State
	started   bool
	peer      *net.UDPAddr
	matchID   string
	keepalive context.CancelFunc
	reason    string
	startedAt time.Time
	endedAt   time.Time

	notified atomic.Bool
	done     chan struct{}
	stats    counters
}

// New validates the parameters and binds the sockets of a session. Nothing is
// sent until Start.
func New(params Params, conf *config.Config, deps Deps) (*Runtime, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()

	logger := conf.Logger().WithFields(logrus.Fields{
		"session":  id,
		"my_uid":   params.MyUID,
		"peer_uid": params.PeerUID,
	})

	sink := deps.Sink
	if sink == nil {
		sink = events.NewLogSink(logger)
	}

	launcher := deps.Launcher
	if launcher == nil {
		launcher = &emulator.ExecLauncher{}
	}

	serverAddr, err := rendezvous.ResolveServer(params.ServerHost, params.ServerPort)
	if err != nil {
		return nil, common.NewSessionErr("relay", common.InvalidParams, err.Error())
	}

	framing, err := wire.NewFraming(conf.Framing, serverAddr)
	if err != nil {
		return nil, err
	}

	localConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("binding local socket: %w", err)
	}

	emuConn, err := bindEmulatorSocket(params.ListenPort(), sink, logger)
	if err != nil {
		localConn.Close()
		return nil, fmt.Errorf("binding emulator socket: %w", err)
	}

	boundPort := uint16(emuConn.LocalAddr().(*net.UDPAddr).Port)
	clk := conf.GetClock()

	ctx, cancel := context.WithCancel(context.Background())

	r := &Runtime{
		id:        id,
		params:    params,
		conf:      conf,
		clock:     clk,
		sink:      sink,
		logger:    logger,
		localConn: localConn,
		emuConn:   emuConn,
		gameAddr:  &net.UDPAddr{IP: loopback, Port: int(params.GamePort())},
		server:    rendezvous.NewClient(localConn, serverAddr, params.MyUID, params.PeerUID, logger),
		framing:   framing,
		emulator:  emulator.NewSupervisor(launcher, conf.EmulatorPollInterval, clk, logger),
		command:   params.emulatorCommand(boundPort, deps.Resolver),
		ctx:       ctx,
		cancel:    cancel,
		state:     AwaitingPeer,
		matchID:   params.MatchID,
		done:      make(chan struct{}),
	}

	r.emulator.OnExit(r.onEmulatorExit)

	return r, nil
}

func bindEmulatorSocket(port uint16, sink events.Sink, logger *logrus.Entry) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: loopback, Port: int(port)})
	if err == nil {
		return conn, nil
	}

	logger.WithError(err).WithField("port", port).Warn("Emulator port busy, using an ephemeral port")
	sink.Log(fmt.Sprintf("Port %d busy, using an ephemeral port", port))

	return net.ListenUDP("udp4", &net.UDPAddr{IP: loopback, Port: 0})
}

// Start registers with the rendezvous server and starts the relay loops and
// the handshake watchdog. If the registration cannot be sent, the sockets are
// released and the error is returned.
func (r *Runtime) Start() (Descriptor, error) {
	r.mu.Lock()
	if r.state == Closed {
		r.mu.Unlock()
		return Descriptor{}, common.NewSessionErr("relay", common.Closed, r.id)
	}
	if r.started {
		r.mu.Unlock()
		return r.Descriptor(), nil
	}
	r.started = true
	r.startedAt = r.clock.Now()
	r.mu.Unlock()

	if err := r.server.Register(false); err != nil {
		r.release()
		return Descriptor{}, err
	}

	d := r.Descriptor()

	r.logger.WithFields(logrus.Fields{
		"local":        d.LocalAddr,
		"emu_listener": d.EmulatorAddr,
		"server":       r.server.Server().String(),
		"framing":      r.framing.Name(),
		"game":         r.params.GameName,
	}).Info("Session started")

	r.sink.Log(d.String())

	r.loops.Go(r.localLoop)
	r.loops.Go(r.emulatorLoop)
	go r.handshakeWatchdog()

	return d, nil
}

// release frees the resources of a session that never started.
func (r *Runtime) release() {
	r.mu.Lock()
	r.state = Closed
	r.mu.Unlock()

	r.cancel()
	r.emulator.Stop()
	r.closeSockets()
	close(r.done)
}

// ID returns the session id.
func (r *Runtime) ID() string {
	return r.id
}

// Params returns the parameters of the session.
func (r *Runtime) Params() Params {
	return r.params
}

// Command returns the emulator invocation of the session.
func (r *Runtime) Command() emulator.Command {
	return r.command
}

// Descriptor returns the bound addresses of the session.
func (r *Runtime) Descriptor() Descriptor {
	return Descriptor{
		SessionID:    r.id,
		LocalAddr:    r.localConn.LocalAddr().String(),
		EmulatorAddr: r.emuConn.LocalAddr().String(),
	}
}

// LocalPort returns the port of the local socket.
func (r *Runtime) LocalPort() int {
	return r.localConn.LocalAddr().(*net.UDPAddr).Port
}

// EmulatorPort returns the port of the emulator socket.
func (r *Runtime) EmulatorPort() int {
	return r.emuConn.LocalAddr().(*net.UDPAddr).Port
}

// State returns the lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Peer returns the peer endpoint, or nil if it is not known yet.
func (r *Runtime) Peer() *net.UDPAddr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peer
}

// MatchID returns the match id reported at the end of the session.
func (r *Runtime) MatchID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matchID
}

// KeepaliveRunning reports whether the keepalive task is active.
func (r *Runtime) KeepaliveRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keepalive != nil
}

// EmulatorRunning reports whether an emulator process is held.
func (r *Runtime) EmulatorRunning() bool {
	return r.emulator.Running()
}

// Stats returns the traffic counters.
func (r *Runtime) Stats() Stats {
	return r.stats.snapshot()
}

// Done is closed when the session is torn down.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

// Reason returns the reason of the end-of-match notification, or an empty
// string if it was not sent.
func (r *Runtime) Reason() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reason
}

// StartedAt returns the time Start was called.
func (r *Runtime) StartedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startedAt
}

// EndedAt returns the time the session was torn down.
func (r *Runtime) EndedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endedAt
}

// Status is a snapshot of a session.
type Status struct {
	Descriptor
	State           string         `json:"state"`
	Peer            string         `json:"peer,omitempty"`
	MatchID         string         `json:"match_id,omitempty"`
	Framing         string         `json:"framing"`
	Keepalive       bool           `json:"keepalive"`
	EmulatorRunning bool           `json:"emulator_running"`
	Emulator        emulator.Stats `json:"emulator"`
	Stats           Stats          `json:"stats"`
	Reason          string         `json:"reason,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
}

// Status returns a snapshot of the session.
func (r *Runtime) Status() Status {
	r.mu.Lock()
	s := Status{
		State:     r.state.String(),
		MatchID:   r.matchID,
		Framing:   r.framing.Name(),
		Keepalive: r.keepalive != nil,
		Reason:    r.reason,
		StartedAt: r.startedAt,
	}
	if r.peer != nil {
		s.Peer = r.peer.String()
	}
	r.mu.Unlock()

	s.Descriptor = r.Descriptor()
	s.EmulatorRunning = r.emulator.Running()
	s.Stats = r.stats.snapshot()

	if stats, err := r.emulator.Stats(); err == nil {
		s.Emulator = stats
	} else {
		r.logger.WithError(err).Debug("Sampling emulator stats")
	}

	return s
}

// setPeer records the peer endpoint unless one is already known. It returns
// whether the endpoint was recorded.
func (r *Runtime) setPeer(addr *net.UDPAddr, matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != AwaitingPeer {
		return false
	}

	r.peer = addr
	r.state = Relaying
	if r.matchID == "" {
		r.matchID = matchID
	}

	return true
}
