//go:build nocgo
// +build nocgo

package audio

import (
	"fmt"
	"io"
	"time"
)

// OtoDevice stub for builds without cgo.
type OtoDevice struct{}

// NewOtoDevice always fails without cgo.
func NewOtoDevice(Format, time.Duration) (*OtoDevice, error) {
	return nil, fmt.Errorf("%w: not available in nocgo build", ErrDeviceUnavailable)
}

func (d *OtoDevice) NewPlayer(io.Reader) (Player, error) { return nil, ErrDeviceUnavailable }

func (d *OtoDevice) SampleRate() int { return DefaultSampleRate }

func (d *OtoDevice) ChannelCount() int { return DefaultChannels }

func (d *OtoDevice) IsReady() bool { return false }

func (d *OtoDevice) Close() error { return nil }
