package playback

// State is the controller's playback state.
type State int

const (
	// StateIdle indicates nothing is playing.
	StateIdle State = iota
	// StatePlaying indicates a graph is live or, without audio, that the
	// screen shows playback.
	StatePlaying
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
