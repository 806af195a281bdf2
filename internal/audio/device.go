package audio

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Device is an output sink that pulls signed 16-bit little-endian PCM from
// readers handed to NewPlayer.
type Device interface {
	// NewPlayer creates a player that reads PCM from r once started.
	NewPlayer(r io.Reader) (Player, error)

	// SampleRate returns the rate the device renders at.
	SampleRate() int

	// ChannelCount returns the number of interleaved channels.
	ChannelCount() int

	// IsReady reports whether players can be created.
	IsReady() bool

	// Close releases the device.
	Close() error
}

// Player pulls PCM from its reader on the device's own goroutine.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool

	// BufferedSize returns the number of bytes read from the reader that
	// have not been heard yet.
	BufferedSize() int

	Err() error
	Close() error
}

// Mode selects which device implementation to use.
type Mode int

const (
	// ModeAuto probes the platform and falls back to the mock device.
	ModeAuto Mode = iota
	// ModeDevice always uses real hardware.
	ModeDevice
	// ModeMock never touches hardware.
	ModeMock
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeDevice:
		return "device"
	case ModeMock:
		return "mock"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as used in the config file.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "device", "oto":
		return ModeDevice, nil
	case "mock":
		return ModeMock, nil
	default:
		return ModeAuto, fmt.Errorf("unknown audio mode %q: must be one of auto, device, mock", s)
	}
}

// NewDevice creates a device for the given mode and format.
func NewDevice(mode Mode, format Format, bufferSize time.Duration) (Device, error) {
	switch mode {
	case ModeDevice:
		log.Debug("Creating oto device", "format", format.String())
		dev, err := NewOtoDevice(format, bufferSize)
		if err != nil {
			return nil, err
		}
		return dev, nil

	case ModeMock:
		log.Debug("Creating mock device", "format", format.String())
		return NewMockDevice(format.SampleRate, format.Channels), nil

	case ModeAuto:
		platform := DetectPlatform()
		if platform.ShouldUseMock() {
			log.Info("Using mock audio device", "reason", platform.MockReason())
			return NewMockDevice(format.SampleRate, format.Channels), nil
		}
		if bufferSize == 0 {
			bufferSize = platform.BufferSize()
		}
		dev, err := NewOtoDevice(format, bufferSize)
		if err != nil {
			log.Warn("Unable to open audio device, falling back to mock", "error", err, "platform", platform.OS)
			return NewMockDevice(format.SampleRate, format.Channels), nil
		}
		return dev, nil

	default:
		return nil, fmt.Errorf("unknown audio mode: %v", mode)
	}
}
