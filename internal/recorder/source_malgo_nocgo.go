//go:build nocgo
// +build nocgo

package recorder

import (
	"fmt"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
)

// MalgoSource stub for builds without cgo.
type MalgoSource struct{}

// NewMalgoSource always fails without cgo.
func NewMalgoSource(audio.Format) (*MalgoSource, error) {
	return nil, fmt.Errorf("%w: capture not available in nocgo build", audio.ErrDeviceUnavailable)
}

func (s *MalgoSource) Start(func([]byte)) error { return audio.ErrDeviceUnavailable }

func (s *MalgoSource) Stop() error { return nil }

func (s *MalgoSource) Close() error { return nil }
