package emulator

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mosaicnetworks/reflector/src/common"
)

const testPoll = 10 * time.Millisecond

func newTestSupervisor(t *testing.T, launcher Launcher) *Supervisor {
	return NewSupervisor(launcher, testPoll, clock.New(), common.NewTestEntry(t, common.TestLogLevel))
}

func TestLaunchOnce(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)
	defer s.Stop()

	started, err := s.Launch(Command{Path: "emu"})
	if err != nil {
		t.Fatal(err)
	}
	if !started {
		t.Fatalf("first launch should start the emulator")
	}

	started, err = s.Launch(Command{Path: "emu"})
	if err != nil {
		t.Fatal(err)
	}
	if started {
		t.Fatalf("second launch should be a no-op")
	}

	if launcher.Launches() != 1 {
		t.Fatalf("emulator should be launched once, not %d times", launcher.Launches())
	}

	if !s.Running() || !s.Launched() {
		t.Fatalf("supervisor should hold a running process")
	}
}

func TestLaunchFailureIsNotRetried(t *testing.T) {
	launcher := NewFakeLauncher()
	launcher.FailWith(fmt.Errorf("no such file"))
	s := newTestSupervisor(t, launcher)

	_, err := s.Launch(Command{Path: "missing"})
	if !common.IsSessionErr(err, common.LaunchFailed) {
		t.Fatalf("launch should fail with LaunchFailed, got %v", err)
	}

	started, err := s.Launch(Command{Path: "missing"})
	if started || err != nil {
		t.Fatalf("failed launch should not be retried: %v %v", started, err)
	}

	if launcher.Launches() != 1 {
		t.Fatalf("launcher should be called once, not %d times", launcher.Launches())
	}
}

func TestWatchdogReportsExitOnce(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)
	defer s.Stop()

	var calls int32
	exitCh := make(chan struct{}, 2)
	s.OnExit(func(err error) {
		atomic.AddInt32(&calls, 1)
		exitCh <- struct{}{}
	})

	if _, err := s.Launch(Command{Path: "emu"}); err != nil {
		t.Fatal(err)
	}

	launcher.Last().Exit()

	select {
	case <-exitCh:
	case <-time.After(time.Second):
		t.Fatalf("exit should be reported")
	}

	time.Sleep(5 * testPoll)

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("exit should be reported once, not %d times", n)
	}

	if s.Running() {
		t.Fatalf("exited process should be released")
	}
}

func TestWatchdogTreatsStatusErrorAsExit(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)
	defer s.Stop()

	errCh := make(chan error, 1)
	s.OnExit(func(err error) { errCh <- err })

	if _, err := s.Launch(Command{Path: "emu"}); err != nil {
		t.Fatal(err)
	}

	launcher.Last().FailStatus(fmt.Errorf("status unavailable"))

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("status error should be passed to the exit callback")
		}
	case <-time.After(time.Second):
		t.Fatalf("status error should count as exit")
	}
}

func TestKillIsNotAnExit(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)
	defer s.Stop()

	var calls int32
	s.OnExit(func(err error) { atomic.AddInt32(&calls, 1) })

	if _, err := s.Launch(Command{Path: "emu"}); err != nil {
		t.Fatal(err)
	}

	killed, err := s.Kill()
	if err != nil {
		t.Fatal(err)
	}
	if !killed {
		t.Fatalf("Kill should report a killed process")
	}

	if !launcher.Last().Killed() {
		t.Fatalf("process should be killed")
	}

	time.Sleep(5 * testPoll)

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("kill should not be reported as exit, got %d", n)
	}

	killed, err = s.Kill()
	if killed || err != nil {
		t.Fatalf("second Kill should be a no-op: %v %v", killed, err)
	}
}

func TestFailedKillKeepsProcess(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)
	defer s.Stop()

	var calls int32
	s.OnExit(func(err error) { atomic.AddInt32(&calls, 1) })

	if _, err := s.Launch(Command{Path: "emu"}); err != nil {
		t.Fatal(err)
	}

	proc := launcher.Last()
	proc.FailKill(fmt.Errorf("operation not permitted"))

	killed, err := s.Kill()
	if err == nil || killed {
		t.Fatalf("failed kill should be reported, got %v %v", killed, err)
	}

	if !s.Running() {
		t.Fatalf("process should still be held after a failed kill")
	}

	proc.FailKill(nil)

	killed, err = s.Kill()
	if err != nil || !killed {
		t.Fatalf("second kill should succeed, got %v %v", killed, err)
	}

	if s.Running() || !proc.Killed() {
		t.Fatalf("process should be killed and released")
	}

	time.Sleep(5 * testPoll)

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("kill should not be reported as exit, got %d", n)
	}
}

func TestStopPreventsLaunch(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)

	if killed, _ := s.Stop(); killed {
		t.Fatalf("nothing to kill")
	}

	started, err := s.Launch(Command{Path: "emu"})
	if started || err != nil {
		t.Fatalf("launch after stop should be a no-op: %v %v", started, err)
	}

	if launcher.Launches() != 0 {
		t.Fatalf("launcher should not be called after stop")
	}
}

func TestSupervisorStats(t *testing.T) {
	launcher := NewFakeLauncher()
	s := newTestSupervisor(t, launcher)
	defer s.Stop()

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.PID != 0 {
		t.Fatalf("no process, no stats")
	}

	if _, err := s.Launch(Command{Path: "emu"}); err != nil {
		t.Fatal(err)
	}

	stats, err = s.Stats()
	if err != nil {
		t.Fatal(err)
	}

	if stats.PID != os.Getpid() || !stats.Running {
		t.Fatalf("unexpected stats %#v", stats)
	}
}
