package audio

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"tunebox/log"
)

// Players tried in order. ffplay ships with ffmpeg, avplay with the
// older libav fork.
var playerNames = []string{"ffplay", "avplay"}

// Render writes buf to a temporary WAV file and hands it to an external
// player process. The returned Rendering owns that exact process, so
// Stop terminates it without touching unrelated players on the machine.
func (System) Render(buf *Buffer) (Rendering, error) {
	player, err := lookupPlayer()
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "tunebox-*.wav")
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := writeWAV(f, buf); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("render: %w", err)
	}

	cmd := exec.Command(player, "-nodisp", "-autoexit", "-loglevel", "quiet", f.Name())
	if err := cmd.Start(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("render: start %s: %w", player, err)
	}

	r := &processRendering{cmd: cmd, done: make(chan struct{})}
	go func() {
		// Player exit codes are not meaningful to us: a kill and a
		// clean run both count as "done".
		if err := cmd.Wait(); err != nil {
			log.Warnf("player process exited: %v", err)
		}
		os.Remove(f.Name())
		close(r.done)
	}()
	return r, nil
}

func lookupPlayer() (string, error) {
	for _, name := range playerNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no external audio player found (tried %s); install ffmpeg", strings.Join(playerNames, ", "))
}

type processRendering struct {
	cmd      *exec.Cmd
	done     chan struct{}
	stopOnce sync.Once
}

func (r *processRendering) Done() <-chan struct{} { return r.done }

func (r *processRendering) Stop() {
	r.stopOnce.Do(func() {
		terminate(r.cmd, r.done)
	})
}

const pcmScale = 1<<15 - 1

func writeWAV(f *os.File, buf *Buffer) error {
	enc := wav.NewEncoder(f, buf.Rate, 16, 2, 1)
	intBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: buf.Rate},
		SourceBitDepth: 16,
		Data:           make([]int, 0, len(buf.Samples)*2),
	}
	for _, s := range buf.Samples {
		intBuf.Data = append(intBuf.Data, pcmSample(s[0]), pcmSample(s[1]))
	}
	if err := enc.Write(intBuf); err != nil {
		return err
	}
	return enc.Close()
}

// pcmSample quantizes a [-1, 1] sample to 16 bits, rounding to the
// nearest level rather than truncating toward zero.
func pcmSample(v float64) int {
	return int(math.Round(v * pcmScale))
}
