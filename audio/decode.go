package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

const decodeChunk = 4096 // samples per Stream call while draining

// Decode reads an entire .mp3 or .wav file into memory. The input file
// is not held open after Decode returns.
func (System) Decode(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio format %q (supported: .mp3, .wav)", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	buf := &Buffer{Rate: int(format.SampleRate)}
	chunk := make([][2]float64, decodeChunk)
	for {
		n, ok := streamer.Stream(chunk)
		buf.Samples = append(buf.Samples, chunk[:n]...)
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if len(buf.Samples) == 0 {
		return nil, errors.New("decode " + filepath.Base(path) + ": no audio data")
	}
	return buf, nil
}
