package relay

// State captures the lifecycle of a Runtime.
type State uint32

const (
	// AwaitingPeer is the state of a session that does not know its peer yet.
	AwaitingPeer State = iota
	// Relaying means the peer endpoint is known.
	Relaying
	// Closed is final.
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingPeer:
		return "AwaitingPeer"
	case Relaying:
		return "Relaying"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}
