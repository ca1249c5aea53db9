package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

func ResolveDir() (string, error) {
	// Priority 1: TUNEBOX_LOG_PATH environment variable
	envPath := os.Getenv("TUNEBOX_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 2: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	f, err := os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	diagFile = f

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func TrackLoaded(name string, duration time.Duration, sampleRate int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("file", name).
		Float64("duration_s", duration.Seconds()).
		Int("sample_rate", sampleRate).
		Msg("track_loaded")
}

func PlaybackStart(name string, gainDB int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("file", name).
		Int("gain_db", gainDB).
		Msg("playback_start")
}

func PlaybackStop(name string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("file", name).
		Msg("playback_stop")
}

func PlaybackFinished(name string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("file", name).
		Msg("playback_finished")
}

func SessionStart(version string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("version", version).
		Msg("session_start")
}

func SessionEnd() {
	if !logReady {
		return
	}
	diagLog.Info().Msg("session_end")
}
