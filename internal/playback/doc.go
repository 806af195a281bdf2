// Package playback builds effect graphs for a recorded take, starts them and
// reports when the audible output has finished.
//
// A Controller owns a single playback slot. Play builds a Graph from the
// loaded asset and an effects.Config, starts it, and arms a Scheduler once
// the graph reports that rendering finished. The scheduler fires on the
// runloop.Dispatcher after the audio still buffered in the device has had
// time to play out, and the controller returns to Idle. Stop cancels the
// scheduler before silencing the graph, so a stopped cycle never completes.
package playback
