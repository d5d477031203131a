package emulator

import (
	"os"
	"sync"
)

// FakeLauncher is an in-memory Launcher. It records every command and hands
// out FakeProcesses that only exit when told to.
type FakeLauncher struct {
	mu       sync.Mutex
	err      error
	commands []Command
	procs    []*FakeProcess
}

// NewFakeLauncher ...
func NewFakeLauncher() *FakeLauncher {
	return &FakeLauncher{}
}

// FailWith makes subsequent launches fail with err.
func (l *FakeLauncher) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Launch implements Launcher.
func (l *FakeLauncher) Launch(cmd Command) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.commands = append(l.commands, cmd)
	if l.err != nil {
		return nil, l.err
	}

	p := NewFakeProcess()
	l.procs = append(l.procs, p)

	return p, nil
}

// Launches returns the number of launch attempts.
func (l *FakeLauncher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.commands)
}

// Commands returns the launched commands.
func (l *FakeLauncher) Commands() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]Command, len(l.commands))
	copy(res, l.commands)
	return res
}

// Last returns the most recent process, or nil.
func (l *FakeLauncher) Last() *FakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.procs) == 0 {
		return nil
	}
	return l.procs[len(l.procs)-1]
}

// FakeProcess is a Process controlled by the caller. Its pid is the pid of the
// current process so that stats can be sampled.
type FakeProcess struct {
	mu        sync.Mutex
	killed    bool
	statusErr error
	killErr   error
	exit      chan struct{}
	exitOnce  sync.Once
}

// NewFakeProcess ...
func NewFakeProcess() *FakeProcess {
	return &FakeProcess{
		exit: make(chan struct{}),
	}
}

// Exit simulates the process terminating on its own.
func (p *FakeProcess) Exit() {
	p.exitOnce.Do(func() { close(p.exit) })
}

// FailStatus makes status checks fail with err.
func (p *FakeProcess) FailStatus(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusErr = err
}

// FailKill makes Kill fail with err and leave the process running. A nil err
// restores normal kills.
func (p *FakeProcess) FailKill(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killErr = err
}

// Killed reports whether Kill was called.
func (p *FakeProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// Pid implements Process.
func (p *FakeProcess) Pid() int {
	return os.Getpid()
}

// Exited implements Process.
func (p *FakeProcess) Exited() (bool, error) {
	p.mu.Lock()
	err := p.statusErr
	p.mu.Unlock()

	if err != nil {
		return false, err
	}

	select {
	case <-p.exit:
		return true, nil
	default:
		return false, nil
	}
}

// Kill implements Process.
func (p *FakeProcess) Kill() error {
	p.mu.Lock()
	if p.killErr != nil {
		err := p.killErr
		p.mu.Unlock()
		return err
	}
	p.killed = true
	p.mu.Unlock()
	p.Exit()
	return nil
}

// Wait implements Process.
func (p *FakeProcess) Wait() error {
	<-p.exit
	return nil
}
