package engine

import (
	"io"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
)

func silence(n int) beep.Streamer {
	return beep.Take(n, beep.Silence(-1))
}

func TestPumpSignalsAfterLastRead(t *testing.T) {
	drained := make(chan struct{}, 2)
	p := newPump(silence(100), 2, func() { drained <- struct{}{} })

	buf := make([]byte, 1000)
	n, err := p.Read(buf)
	if n != 400 || err != nil {
		t.Fatalf("Read() = %d, %v, want 400, nil", n, err)
	}
	select {
	case <-drained:
		t.Fatal("drain signalled before the device asked for more")
	case <-time.After(20 * time.Millisecond):
	}

	for i := 0; i < 2; i++ {
		if n, err := p.Read(buf); n != 0 || err != io.EOF {
			t.Fatalf("Read() = %d, %v, want 0, EOF", n, err)
		}
	}
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain never signalled")
	}
	select {
	case <-drained:
		t.Error("drain signalled twice")
	case <-time.After(20 * time.Millisecond):
	}
	if p.bytesProduced() != 400 {
		t.Errorf("bytesProduced() = %d, want 400", p.bytesProduced())
	}
}

func TestPumpStopSuppressesDrain(t *testing.T) {
	drained := make(chan struct{}, 1)
	p := newPump(silence(10), 1, func() { drained <- struct{}{} })
	p.stop()

	if n, err := p.Read(make([]byte, 100)); n != 0 || err != io.EOF {
		t.Errorf("Read() after stop = %d, %v, want 0, EOF", n, err)
	}
	select {
	case <-drained:
		t.Error("drain signalled after stop")
	case <-time.After(20 * time.Millisecond):
	}
}
