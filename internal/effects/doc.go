// Package effects defines the processing stages a recording passes through
// on its way to the output device: rate and pitch shifting, echo, reverb and
// the passthrough output stage.
//
// Stages wrap beep streamers, so the same chain drives live playback and the
// offline renderer.
package effects
