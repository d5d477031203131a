package common

import "fmt"

// SessionErrType enumerates the failures reported by session operations.
type SessionErrType uint32

const (
	// InvalidParams means the session parameters were rejected before any
	// socket was bound.
	InvalidParams SessionErrType = iota
	// NoParams means start was called without parameters.
	NoParams
	// Closed means the operation targeted a session that was already torn
	// down.
	Closed
	// LaunchFailed means the emulator process could not be spawned.
	LaunchFailed
)

// SessionErr is the typed error returned by the relay and session packages.
type SessionErr struct {
	component string
	errType   SessionErrType
	detail    string
}

// NewSessionErr ...
func NewSessionErr(component string, errType SessionErrType, detail string) SessionErr {
	return SessionErr{
		component: component,
		errType:   errType,
		detail:    detail,
	}
}

// Type returns the kind of failure.
func (e SessionErr) Type() SessionErrType {
	return e.errType
}

// Error ...
func (e SessionErr) Error() string {
	m := ""
	switch e.errType {
	case InvalidParams:
		m = "Invalid Params"
	case NoParams:
		m = "No Params"
	case Closed:
		m = "Closed"
	case LaunchFailed:
		m = "Launch Failed"
	}

	if e.detail == "" {
		return fmt.Sprintf("%s, %s", e.component, m)
	}
	return fmt.Sprintf("%s, %s, %s", e.component, m, e.detail)
}

// IsSessionErr checks that an error is of type SessionErr and that its code
// matches the provided SessionErrType.
func IsSessionErr(err error, t SessionErrType) bool {
	sessionErr, ok := err.(SessionErr)
	return ok && sessionErr.errType == t
}
