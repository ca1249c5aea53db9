package audio

import "time"

// Buffer holds decoded interleaved stereo samples in [-1, 1].
type Buffer struct {
	Samples [][2]float64
	Rate    int // sample rate in Hz
}

func (b *Buffer) Duration() time.Duration {
	if b.Rate == 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.Rate) * float64(time.Second))
}

// Peak returns the largest absolute sample value across both channels.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		for _, v := range s {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}

// Backend decodes audio files and renders buffers to the system output.
type Backend interface {
	Decode(path string) (*Buffer, error)
	Render(buf *Buffer) (Rendering, error)
}

// Rendering is a handle to one in-flight playback. Done is closed when
// playback ends, whether it ran to completion or was stopped. Stop is
// best effort and safe to call more than once.
type Rendering interface {
	Done() <-chan struct{}
	Stop()
}

// System is the production Backend: in-process decoding via beep,
// rendering through an external player process.
type System struct{}
