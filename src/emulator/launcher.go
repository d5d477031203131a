package emulator

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Process is a handle on a running emulator.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int
	// Exited reports, without blocking, whether the process has terminated.
	// An error means the status could not be determined.
	Exited() (bool, error)
	// Kill terminates the process. Killing a terminated process is not an
	// error.
	Kill() error
	// Wait blocks until the process has terminated.
	Wait() error
}

// Launcher spawns emulator processes.
type Launcher interface {
	Launch(cmd Command) (Process, error)
}

// ExecLauncher spawns processes with os/exec.
type ExecLauncher struct {
	// Env is appended to the environment of the current process.
	Env []string

	// Stdout and Stderr receive the emulator's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Launch implements Launcher.
func (l *ExecLauncher) Launch(cmd Command) (Process, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	if len(l.Env) > 0 {
		c.Env = append(os.Environ(), l.Env...)
	}
	c.Stdout = l.Stdout
	c.Stderr = l.Stderr

	if err := c.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{
		cmd:  c,
		done: make(chan struct{}),
	}

	go p.wait()

	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}

	errLock sync.Mutex
	err     error
}

func (p *execProcess) wait() {
	err := p.cmd.Wait()

	p.errLock.Lock()
	p.err = err
	p.errLock.Unlock()

	close(p.done)
}

func (p *execProcess) waitErr() error {
	p.errLock.Lock()
	defer p.errLock.Unlock()
	return p.err
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Exited() (bool, error) {
	select {
	case <-p.done:
		err := p.waitErr()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return true, err
		}
		return true, nil
	default:
		return false, nil
	}
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if err != nil && errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.waitErr()
}
