package tuner

// State is the analysis loop state.
type State int32

const (
	// StateIdle: waiting for a frame.
	StateIdle State = iota
	// StateProcessing: one frame is being analysed.
	StateProcessing
	// StateStopped: terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
