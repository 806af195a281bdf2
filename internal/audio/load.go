package audio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".wave": decodeWAV,
	".mp3":  decodeMP3,
}

// Extensions lists the file extensions Load understands. Anything not
// decoded natively is transcoded through ffmpeg.
var Extensions = []string{"*.wav", "*.wave", "*.mp3", "*.m4a", "*.aac", "*.caf", "*.flac", "*.ogg", "*.aiff"}

func decodeWAV(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	return wav.Decode(f)
}

func decodeMP3(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	return mp3.Decode(f)
}

// Load decodes the file at path into an Asset. Failures are always
// reported as *AudioFileError.
func Load(path string) (*Asset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return loadTranscoded(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	s, format, err := decode(f)
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	defer s.Close() //nolint:errcheck

	asset, err := NewAsset(path, FromBeep(format), s)
	if err != nil {
		return nil, err
	}

	log.Debug("Loaded audio asset",
		"path", path,
		"format", asset.Format().String(),
		"frames", asset.Length(),
		"duration", asset.Duration())
	return asset, nil
}

// loadTranscoded converts containers beep cannot read into a temporary
// 16-bit WAV file with ffmpeg and decodes that.
func loadTranscoded(path string) (*Asset, error) {
	info, err := Probe(path)
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	log.Debug("Transcoding audio", "path", path, "codec", info.Codec, "sample_rate", info.SampleRate)

	tmp, err := os.CreateTemp("", "pitchperfect-*.wav")
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath) //nolint:errcheck

	var stderr bytes.Buffer
	err = ffmpeg.Input(path).
		Output(tmpPath, ffmpeg.KwArgs{
			"acodec": "pcm_s16le",
			"f":      "wav",
		}).
		OverWriteOutput().
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))}
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	return NewAsset(path, FromBeep(format), s)
}

// ProbeInfo is the subset of ffprobe output the loader cares about.
type ProbeInfo struct {
	Codec      string
	SampleRate int
	Channels   int
	Duration   float64
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects a container with ffprobe and returns its first audio
// stream.
func Probe(path string) (ProbeInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("probe failed: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(out string) (ProbeInfo, error) {
	var po probeOutput
	if err := json.Unmarshal([]byte(out), &po); err != nil {
		return ProbeInfo{}, fmt.Errorf("unable to parse probe output: %w", err)
	}
	for _, s := range po.Streams {
		if s.CodecType != "audio" {
			continue
		}
		rate, _ := strconv.Atoi(s.SampleRate)
		dur, _ := strconv.ParseFloat(po.Format.Duration, 64)
		return ProbeInfo{
			Codec:      s.CodecName,
			SampleRate: rate,
			Channels:   s.Channels,
			Duration:   dur,
		}, nil
	}
	return ProbeInfo{}, ErrNoAudioStream
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Encode writes frames from s as a 16-bit WAV stream.
func Encode(w io.WriteSeeker, s beep.Streamer, format Format) error {
	f := format.Beep()
	f.Precision = 2
	if err := wav.Encode(w, s, f); err != nil {
		return fmt.Errorf("unable to encode wav: %w", err)
	}
	return nil
}
