package supervisor

// State is the lifecycle state of the helper process.
type State int32

const (
	NotStarted State = iota
	Running
	// Unresponsive means the last call timed out. The next reply clears it.
	Unresponsive
	// Exited means the helper died or closed the channel without being asked.
	Exited
	// Killed is held while a helper that ignored the exit request is torn down.
	Killed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Unresponsive:
		return "unresponsive"
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	default:
		return "unknown"
	}
}

// Alive reports whether the helper is expected to answer calls.
func (s State) Alive() bool {
	return s == Running || s == Unresponsive
}
