package engine

import (
	"io"
	"sync"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gopxl/beep/v2"
)

// pump adapts the processed stream to the device's io.Reader. It runs on
// the device goroutine and only signals drain; it never calls back into the
// device. Drain is signalled on the first read after the last frame, once the
// device has accounted for every byte handed to it.
type pump struct {
	mu        sync.Mutex
	src       beep.Streamer
	channels  int
	frameSize int
	buf       [][2]float64
	produced  int64
	stopped   bool
	drained   bool
	signalled bool
	err       error
	onDrained func()
}

func newPump(src beep.Streamer, channels int, onDrained func()) *pump {
	return &pump{
		src:       src,
		channels:  channels,
		frameSize: channels * audio.BytesPerSample,
		onDrained: onDrained,
	}
}

func (p *pump) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return 0, io.EOF
	}
	if p.drained {
		p.signal()
		return 0, io.EOF
	}

	frames := len(b) / p.frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(p.buf) < frames {
		p.buf = make([][2]float64, frames)
	}
	buf := p.buf[:frames]

	n, ok := p.src.Stream(buf)
	written := audio.EncodeS16LE(b, buf[:n], p.channels)
	p.produced += int64(written)

	if !ok || n < frames {
		p.drained = true
		p.err = p.src.Err()
		if written == 0 {
			p.signal()
			return 0, io.EOF
		}
	}
	return written, nil
}

func (p *pump) signal() {
	if p.signalled {
		return
	}
	p.signalled = true
	if p.onDrained != nil {
		go p.onDrained()
	}
}

// bytesProduced returns how many PCM bytes were handed to the device.
func (p *pump) bytesProduced() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.produced
}

// stop makes further reads return EOF without signalling drain.
func (p *pump) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

func (p *pump) streamErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
