package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sine(n int) [][2]float64 {
	frames := make([][2]float64, n)
	for i := range frames {
		v := float64(i%100)/100 - 0.5
		frames[i] = [2]float64{v, v}
	}
	return frames
}

func TestNewAssetFromFrames(t *testing.T) {
	format := Format{SampleRate: 1000, Channels: 1, BitDepth: 16}

	asset, err := NewAssetFromFrames("take.wav", format, sine(1500))
	if err != nil {
		t.Fatalf("NewAssetFromFrames() error = %v", err)
	}
	if asset.Length() != 1500 {
		t.Errorf("Length() = %d, want 1500", asset.Length())
	}
	if asset.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", asset.Duration())
	}
	if asset.SampleRate() != 1000 {
		t.Errorf("SampleRate() = %v, want 1000", asset.SampleRate())
	}

	// Each streamer starts from the beginning.
	for i := 0; i < 2; i++ {
		s := asset.Streamer()
		buf := make([][2]float64, 2000)
		n, _ := s.Stream(buf)
		if n != 1500 {
			t.Errorf("pass %d: streamed %d frames, want 1500", i, n)
		}
	}
}

func TestNewAssetErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		frames  [][2]float64
		wantErr error
	}{
		{"empty", DefaultFormat(), nil, ErrEmptyAsset},
		{"bad format", Format{SampleRate: -1, Channels: 1, BitDepth: 16}, sine(10), ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := NewAssetFromFrames("x.wav", tt.format, tt.frames)
			if asset != nil {
				t.Error("expected no asset on error")
			}
			var fileErr *AudioFileError
			if !errors.As(err, &fileErr) {
				t.Fatalf("error = %T, want *AudioFileError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if fileErr.Title() != AudioFileErrorTitle {
				t.Errorf("Title() = %q", fileErr.Title())
			}
		})
	}
}

func TestLoadWAV(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1, BitDepth: 16}
	src, err := NewAssetFromFrames("", format, sine(800))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "recordedVoice.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Encode(f, src.Streamer(), format); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	asset, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if asset.Length() != 800 {
		t.Errorf("Length() = %d, want 800", asset.Length())
	}
	if asset.Format().SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", asset.Format().SampleRate)
	}
	if asset.Path() != path {
		t.Errorf("Path() = %q, want %q", asset.Path(), path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.wav"))

	var fileErr *AudioFileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("Load() error = %v, want *AudioFileError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want wrapped os.ErrNotExist", err)
	}
	if !fileErr.IsFatal() || fileErr.IsRetryable() {
		t.Error("load errors should be fatal and not retryable")
	}
}

func TestLoadCorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("not a riff file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want decode error")
	}
}
