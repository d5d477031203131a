// Package session holds the active relay session of the process.
package session

import (
	"sync"

	"github.com/mosaicnetworks/reflector/src/common"
	"github.com/mosaicnetworks/reflector/src/config"
	"github.com/mosaicnetworks/reflector/src/emulator"
	"github.com/mosaicnetworks/reflector/src/events"
	"github.com/mosaicnetworks/reflector/src/history"
	"github.com/mosaicnetworks/reflector/src/relay"
	"github.com/sirupsen/logrus"
)

// Manager holds zero or one relay Runtime. Start, Stop and KillProcessOnly are
// serialized.
type Manager struct {
	conf    *config.Config
	deps    relay.Deps
	history history.Store
	logger  *logrus.Entry

	mu      sync.Mutex
	current *relay.Runtime

	// watchers tracks the goroutines recording finished sessions.
	watchers sync.WaitGroup
}

// NewManager returns a Manager. store may be nil, in which case finished
// sessions are not recorded.
func NewManager(conf *config.Config, deps relay.Deps, store history.Store) *Manager {
	logger := conf.Logger().WithField("component", "session")

	if deps.Sink == nil {
		deps.Sink = events.NewLogSink(logger)
	}

	if deps.Launcher == nil {
		deps.Launcher = &emulator.ExecLauncher{}
	}

	return &Manager{
		conf:    conf,
		deps:    deps,
		history: store,
		logger:  logger,
	}
}

// Start stops the current session, if any, then creates and starts a new one.
func (m *Manager) Start(params *relay.Params) (relay.Descriptor, error) {
	if params == nil {
		return relay.Descriptor{}, common.NewSessionErr("session", common.NoParams, "")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.WithField("session", m.current.ID()).Info("Stopping previous session")
		if err := m.current.Stop(); err != nil {
			m.logger.WithError(err).Debug("Previous session loops")
		}
		m.current = nil
	}

	rt, err := relay.New(*params, m.conf, m.deps)
	if err != nil {
		return relay.Descriptor{}, err
	}

	d, err := rt.Start()
	if err != nil {
		return relay.Descriptor{}, err
	}

	m.current = rt

	m.watchers.Add(1)
	go m.watch(rt)

	return d, nil
}

// Stop tears down the current session. It does nothing if there is none.
func (m *Manager) Stop() error {
	m.mu.Lock()
	rt := m.current
	m.current = nil
	m.mu.Unlock()

	if rt == nil {
		return nil
	}

	return rt.Stop()
}

// KillProcessOnly kills the emulator of the current session and keeps the
// session running. It does nothing if there is no session.
func (m *Manager) KillProcessOnly() error {
	m.mu.Lock()
	rt := m.current
	m.mu.Unlock()

	if rt == nil {
		return nil
	}

	return rt.KillProcessOnly()
}

// Current returns the active session, or nil.
func (m *Manager) Current() *relay.Runtime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Status returns a snapshot of the active session, and false if there is
// none.
func (m *Manager) Status() (relay.Status, bool) {
	rt := m.Current()
	if rt == nil {
		return relay.Status{}, false
	}
	return rt.Status(), true
}

// History returns the finished sessions.
func (m *Manager) History() ([]history.Record, error) {
	if m.history == nil {
		return []history.Record{}, nil
	}
	return m.history.List()
}

// Shutdown stops the current session and waits until it is recorded.
func (m *Manager) Shutdown() error {
	err := m.Stop()
	m.watchers.Wait()
	return err
}

// watch records the session once it ends and forgets it if it is still
// current.
func (m *Manager) watch(rt *relay.Runtime) {
	defer m.watchers.Done()

	<-rt.Done()

	m.mu.Lock()
	if m.current == rt {
		m.current = nil
	}
	m.mu.Unlock()

	if m.history == nil {
		return
	}

	if err := m.history.Add(NewRecord(rt)); err != nil {
		m.logger.WithError(err).Error("Recording session")
	}
}

// NewRecord summarizes a finished session.
func NewRecord(rt *relay.Runtime) history.Record {
	s := rt.Status()
	p := rt.Params()

	return history.Record{
		SessionID:     rt.ID(),
		MatchID:       s.MatchID,
		MyUID:         p.MyUID,
		PeerUID:       p.PeerUID,
		Peer:          s.Peer,
		Framing:       s.Framing,
		Reason:        s.Reason,
		StartedAt:     rt.StartedAt(),
		EndedAt:       rt.EndedAt(),
		PacketsToPeer: s.Stats.PacketsToPeer,
		PacketsToEmu:  s.Stats.PacketsToEmulator,
		BytesToPeer:   s.Stats.BytesToPeer,
		BytesToEmu:    s.Stats.BytesToEmulator,
		Dropped:       s.Stats.Dropped,
	}
}
