package engine

import "errors"

var (
	// ErrNotAttached is returned when connecting a node that was never
	// attached.
	ErrNotAttached = errors.New("node is not attached to the engine")
	// ErrAlreadyConnected is returned when a node already has a link on the
	// requested side.
	ErrAlreadyConnected = errors.New("node is already connected")
	// ErrFormatMismatch is returned when a link's format differs from the
	// format flowing into its source node.
	ErrFormatMismatch = errors.New("connection format does not match upstream format")
	// ErrRunning is returned when the topology changes while running.
	ErrRunning = errors.New("engine is running")
	// ErrNotRunning is returned when playing a node on a stopped engine.
	ErrNotRunning = errors.New("engine is not running")
	// ErrNoSource is returned when no single player node is attached.
	ErrNoSource = errors.New("engine needs exactly one player node")
	// ErrNoOutput is returned when the chain does not end in an output stage.
	ErrNoOutput = errors.New("chain does not end in an output stage")
	// ErrNothingScheduled is returned when the player has no segment.
	ErrNothingScheduled = errors.New("player has nothing scheduled")
	// ErrDeviceNotReady is returned when the device cannot create players.
	ErrDeviceNotReady = errors.New("output device is not ready")
)
