package recorder

// State is the recorder's position in its lifecycle.
type State int

const (
	// StateStopped means nothing is being captured. It is the initial state.
	StateStopped State = iota
	// StateRecording means the source is delivering samples.
	StateRecording
	// StatePaused means capture is suspended but the take is kept.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Status labels shown next to the record button.
const (
	LabelStopped   = "Tap to Record"
	LabelRecording = "Recording in Progress"
	LabelPaused    = "Recording Paused"
	LabelFailed    = "Recording was not successful"
)

// Label returns the status text for s.
func (s State) Label() string {
	switch s {
	case StateRecording:
		return LabelRecording
	case StatePaused:
		return LabelPaused
	default:
		return LabelStopped
	}
}

var transitions = map[State][]State{
	StateStopped:   {StateRecording},
	StateRecording: {StatePaused, StateStopped},
	StatePaused:    {StateRecording, StateStopped},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
