package events

import (
	"sync"
	"time"
)

// Recorder is a Sink that keeps every notification in memory.
type Recorder struct {
	mu     sync.Mutex
	logs   []string
	alerts []Alert
	ends   []MatchEnd
}

// NewRecorder ...
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Log implements Sink.
func (r *Recorder) Log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, msg)
}

// Alert implements Sink.
func (r *Recorder) Alert(a Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

// MatchEnded implements Sink.
func (r *Recorder) MatchEnded(e MatchEnd) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends = append(r.ends, e)
}

// Logs returns the recorded log lines.
func (r *Recorder) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.logs...)
}

// Alerts returns the recorded alerts.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert{}, r.alerts...)
}

// Ends returns the recorded end-of-match notifications.
func (r *Recorder) Ends() []MatchEnd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MatchEnd{}, r.ends...)
}

// WaitEnds polls until at least n end-of-match notifications were recorded or
// the timeout expires.
func (r *Recorder) WaitEnds(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if len(r.Ends()) >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}
