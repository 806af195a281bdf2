//go:build !nocgo
// +build !nocgo

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce   sync.Once
	otoShared *OtoDevice
	otoErr    error
)

// OtoDevice renders through the platform audio stack via oto.
type OtoDevice struct {
	mu      sync.Mutex
	context *oto.Context
	format  Format
	ready   bool
}

// NewOtoDevice returns the process-wide oto device, opening it with format
// on first use. Later calls get the same device regardless of format; the
// engine resamples at the sink when rates differ.
func NewOtoDevice(format Format, bufferSize time.Duration) (*OtoDevice, error) {
	otoOnce.Do(func() {
		otoShared, otoErr = openOto(format, bufferSize)
	})
	return otoShared, otoErr
}

func openOto(format Format, bufferSize time.Duration) (*OtoDevice, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	options := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	}

	log.Debug("Initializing oto context",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("%w: context initialization timeout", ErrDeviceUnavailable)
	}

	return &OtoDevice{
		context: ctx,
		format:  Format{SampleRate: format.SampleRate, Channels: format.Channels, BitDepth: DefaultBitDepth},
		ready:   true,
	}, nil
}

// NewPlayer creates an oto player reading from r.
func (d *OtoDevice) NewPlayer(r io.Reader) (Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready || d.context == nil {
		return nil, ErrDeviceClosed
	}
	if err := d.context.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return d.context.NewPlayer(r), nil
}

// SampleRate returns the device rate.
func (d *OtoDevice) SampleRate() int { return d.format.SampleRate }

// ChannelCount returns the device channel count.
func (d *OtoDevice) ChannelCount() int { return d.format.Channels }

// IsReady reports whether the context finished initializing.
func (d *OtoDevice) IsReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Close suspends the context. oto contexts cannot be destroyed, so the
// device stays unusable for the rest of the process.
func (d *OtoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil
	}
	d.ready = false
	return d.context.Suspend()
}
