package audio

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Platform is the operating system the process runs on.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// Subsystem is the audio stack found on the host.
type Subsystem string

const (
	SubsystemALSA       Subsystem = "alsa"
	SubsystemPulseAudio Subsystem = "pulseaudio"
	SubsystemCoreAudio  Subsystem = "coreaudio"
	SubsystemWASAPI     Subsystem = "wasapi"
	SubsystemNone       Subsystem = "none"
)

// MockAudioEnv forces the mock device when set to "true".
const MockAudioEnv = "PITCHPERFECT_MOCK_AUDIO"

var ciVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"BUILDKITE",
	"DRONE",
	"TEAMCITY_VERSION",
}

// PlatformInfo describes the host's audio capabilities.
type PlatformInfo struct {
	OS        Platform
	Subsystem Subsystem
	HasDevice bool
	IsCI      bool
	MockEnv   bool
}

// DetectPlatform probes the host for an audio stack and output devices.
func DetectPlatform() *PlatformInfo {
	info := &PlatformInfo{
		OS:      currentPlatform(),
		IsCI:    IsCI(),
		MockEnv: os.Getenv(MockAudioEnv) == "true",
	}

	switch info.OS {
	case PlatformLinux:
		info.Subsystem = detectLinuxSubsystem()
		info.HasDevice = linuxHasDevice()
	case PlatformDarwin:
		info.Subsystem = SubsystemCoreAudio
		info.HasDevice = true
	case PlatformWindows:
		info.Subsystem = SubsystemWASAPI
		info.HasDevice = true
	default:
		info.Subsystem = SubsystemNone
	}

	log.Debug("Platform detected",
		"os", info.OS,
		"audio", info.Subsystem,
		"has_device", info.HasDevice,
		"is_ci", info.IsCI)
	return info
}

// DetectCapability reports whether real audio should be attempted.
func DetectCapability() bool {
	return !DetectPlatform().ShouldUseMock()
}

// IsCI reports whether a CI environment variable is set.
func IsCI() bool {
	for _, v := range ciVars {
		if val := os.Getenv(v); val != "" && val != "false" {
			return true
		}
	}
	return false
}

// ShouldUseMock reports whether hardware playback should be skipped.
func (p *PlatformInfo) ShouldUseMock() bool {
	return p.MockReason() != ""
}

// MockReason explains why the mock device is preferred, or returns an
// empty string when hardware looks usable.
func (p *PlatformInfo) MockReason() string {
	switch {
	case p.MockEnv:
		return MockAudioEnv
	case p.IsCI:
		return "CI environment"
	case p.Subsystem == SubsystemNone:
		return "no audio subsystem"
	case !p.HasDevice:
		return "no audio devices"
	default:
		return ""
	}
}

// BufferSize returns the device buffer length that avoids underruns on this
// platform.
func (p *PlatformInfo) BufferSize() time.Duration {
	switch p.OS {
	case PlatformDarwin:
		return 100 * time.Millisecond
	case PlatformWindows:
		return 80 * time.Millisecond
	case PlatformLinux:
		if p.Subsystem == SubsystemPulseAudio {
			return 60 * time.Millisecond
		}
		return 50 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}

func (p *PlatformInfo) String() string {
	return fmt.Sprintf("Platform{OS: %s, Audio: %s, HasDevice: %v, IsCI: %v}",
		p.OS, p.Subsystem, p.HasDevice, p.IsCI)
}

func currentPlatform() Platform {
	switch runtime.GOOS {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnknown
	}
}

func detectLinuxSubsystem() Subsystem {
	if commandAvailable("pactl") {
		if out, err := exec.Command("pactl", "info").Output(); err == nil && strings.Contains(string(out), "Server Name") {
			return SubsystemPulseAudio
		}
	}
	if _, err := os.Stat("/proc/asound"); err == nil {
		return SubsystemALSA
	}
	if commandAvailable("aplay") {
		return SubsystemALSA
	}
	return SubsystemNone
}

func linuxHasDevice() bool {
	if entries, err := os.ReadDir("/dev/snd"); err == nil {
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "pcm") {
				return true
			}
		}
	}
	if content, err := os.ReadFile("/proc/asound/cards"); err == nil {
		if len(content) > 0 && !strings.Contains(string(content), "no soundcards") {
			return true
		}
	}
	if commandAvailable("pactl") {
		if out, err := exec.Command("pactl", "list", "short", "sinks").Output(); err == nil && len(out) > 0 {
			return true
		}
	}
	return false
}

func commandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
