package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Path of the take to open.
	Path string

	// Effect is the preset to play on start; empty waits for a key.
	Effect string

	// Transcribe runs the speech recognizer on new recordings.
	Transcribe bool

	// For debugging the UI
	ShowGraph   bool `env:"PITCHPERFECT_SHOW_GRAPH"`
	EnableMouse bool `env:"PITCHPERFECT_MOUSE"`
	NoAltScreen bool `env:"PITCHPERFECT_NO_ALT_SCREEN"`
}
