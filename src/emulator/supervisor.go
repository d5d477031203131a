package emulator

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mosaicnetworks/reflector/src/common"
	"github.com/sirupsen/logrus"
)

// Supervisor owns the single emulator process of a session. The process is
// launched at most once; a failed launch is not retried.
type Supervisor struct {
	launcher     Launcher
	pollInterval time.Duration
	clock        clock.Clock
	logger       *logrus.Entry

	mu       sync.Mutex
	proc     Process
	launched bool
	stopped  bool
	onExit   func(err error)

	// killLock serializes kill-and-wait sequences.
	killLock sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
}

// NewSupervisor returns a Supervisor that polls for exit every pollInterval.
func NewSupervisor(launcher Launcher, pollInterval time.Duration, clk clock.Clock, logger *logrus.Entry) *Supervisor {
	return &Supervisor{
		launcher:     launcher,
		pollInterval: pollInterval,
		clock:        clk,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// OnExit registers the function called once when the watchdog observes that
// the process terminated on its own. err is set when the exit was inferred
// from a failing status check.
func (s *Supervisor) OnExit(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExit = fn
}

// Launch spawns the emulator unless it was already launched or the supervisor
// is stopped, in which case it returns false and no error. Only the call that
// attempted the spawn can return an error.
func (s *Supervisor) Launch(cmd Command) (bool, error) {
	s.mu.Lock()
	if s.launched || s.stopped {
		s.mu.Unlock()
		return false, nil
	}
	s.launched = true
	s.mu.Unlock()

	s.logger.WithField("cmd", cmd.String()).Debug("Launching emulator")

	proc, err := s.launcher.Launch(cmd)
	if err != nil {
		return false, common.NewSessionErr("emulator", common.LaunchFailed, err.Error())
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.terminate(proc)
		return false, nil
	}
	s.proc = proc
	s.mu.Unlock()

	s.logger.WithField("pid", proc.Pid()).Info("Emulator started")

	go s.watch(proc)

	return true, nil
}

// Launched reports whether a launch was attempted.
func (s *Supervisor) Launched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launched
}

// Running reports whether a process is currently held.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

// Kill terminates the held process, if any, and waits for it. It returns
// whether a process was killed. When the kill fails the process is still
// held.
func (s *Supervisor) Kill() (bool, error) {
	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.mu.Unlock()

	if proc == nil {
		return false, nil
	}

	if err := s.terminate(proc); err != nil {
		s.mu.Lock()
		if s.proc == nil {
			s.proc = proc
		}
		s.mu.Unlock()
		return false, err
	}

	return true, nil
}

// Stop kills the process, stops the watchdog and prevents any further launch.
// It returns whether there was a process to kill.
func (s *Supervisor) Stop() (bool, error) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.done) })

	return s.Kill()
}

// Stats returns resource usage of the held process.
func (s *Supervisor) Stats() (Stats, error) {
	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()

	if proc == nil {
		return Stats{}, nil
	}

	return ProcessStats(proc.Pid())
}

func (s *Supervisor) terminate(proc Process) error {
	s.killLock.Lock()
	defer s.killLock.Unlock()

	if err := proc.Kill(); err != nil {
		s.logger.WithError(err).Warn("Killing emulator")
		return err
	}

	// the exit status of a killed process is expected to be an error
	proc.Wait()

	s.logger.WithField("pid", proc.Pid()).Info("Emulator killed")

	return nil
}

func (s *Supervisor) watch(proc Process) {
	ticker := s.clock.Ticker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		exited, err := proc.Exited()
		if err != nil {
			s.logger.WithError(err).Warn("Emulator status check failed, assuming exited")
			exited = true
		}

		if !exited {
			continue
		}

		s.mu.Lock()
		current := s.proc == proc
		if current {
			s.proc = nil
		}
		onExit := s.onExit
		s.mu.Unlock()

		// a process removed by Kill is not an exit
		if !current {
			return
		}

		s.logger.WithField("pid", proc.Pid()).Info("Emulator exited")

		if onExit != nil {
			onExit(err)
		}

		return
	}
}
