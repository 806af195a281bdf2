//go:build !nocgo
// +build !nocgo

package recorder

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gen2brain/malgo"
)

// MalgoSource captures from the default input device.
type MalgoSource struct {
	mu      sync.Mutex
	format  audio.Format
	context *malgo.AllocatedContext
	device  *malgo.Device

	// The capture callback runs on the device thread while Stop waits for
	// it, so onData has its own lock.
	dataMu sync.Mutex
	onData func([]byte)
}

// NewMalgoSource initializes a capture context. The device itself opens on
// the first Start.
func NewMalgoSource(format audio.Format) (*MalgoSource, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}
	return &MalgoSource{format: format, context: ctx}, nil
}

func (s *MalgoSource) Start(onData func([]byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.context == nil {
		return ErrSourceClosed
	}
	s.dataMu.Lock()
	s.onData = onData
	s.dataMu.Unlock()

	if s.device == nil {
		cfg := malgo.DefaultDeviceConfig(malgo.Capture)
		cfg.Capture.Format = malgo.FormatS16
		cfg.Capture.Channels = uint32(s.format.Channels)
		cfg.SampleRate = uint32(s.format.SampleRate)
		cfg.PeriodSizeInMilliseconds = 20

		device, err := malgo.InitDevice(s.context.Context, cfg, malgo.DeviceCallbacks{
			Data: s.deliver,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
		}
		s.device = device
		log.Debug("Capture device opened", "format", s.format.String())
	}

	if err := s.device.Start(); err != nil {
		return fmt.Errorf("unable to start capture: %w", err)
	}
	return nil
}

func (s *MalgoSource) deliver(_, input []byte, _ uint32) {
	s.dataMu.Lock()
	fn := s.onData
	s.dataMu.Unlock()
	if fn != nil {
		fn(input)
	}
}

func (s *MalgoSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil || !s.device.IsStarted() {
		return nil
	}
	return s.device.Stop()
}

func (s *MalgoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.context != nil {
		_ = s.context.Uninit()
		s.context.Free()
		s.context = nil
	}
	return nil
}
