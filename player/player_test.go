package player

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"tunebox/audio"
)

// recordingSink collects controller notifications for assertions.
// Methods are called from both the test goroutine and render
// goroutines, so everything is under a mutex.
type recordingSink struct {
	mu       sync.Mutex
	loaded   []string
	gains    []int
	statuses []Status
	loadErrs []error
	warnings int
}

func (s *recordingSink) TrackLoaded(name string) {
	s.mu.Lock()
	s.loaded = append(s.loaded, name)
	s.mu.Unlock()
}

func (s *recordingSink) LoadFailed(err error) {
	s.mu.Lock()
	s.loadErrs = append(s.loadErrs, err)
	s.mu.Unlock()
}

func (s *recordingSink) NoTrackLoaded() {
	s.mu.Lock()
	s.warnings++
	s.mu.Unlock()
}

func (s *recordingSink) GainChanged(db int) {
	s.mu.Lock()
	s.gains = append(s.gains, db)
	s.mu.Unlock()
}

func (s *recordingSink) StatusChanged(st Status) {
	s.mu.Lock()
	s.statuses = append(s.statuses, st)
	s.mu.Unlock()
}

func (s *recordingSink) warningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings
}

func (s *recordingSink) loadErrCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadErrs)
}

func (s *recordingSink) statusLog() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, len(s.statuses))
	copy(out, s.statuses)
	return out
}

func tone(amplitude float64, n int) *audio.Buffer {
	buf := &audio.Buffer{Samples: make([][2]float64, n), Rate: 44100}
	for i := range buf.Samples {
		v := amplitude * math.Sin(2*math.Pi*440*float64(i)/44100)
		buf.Samples[i] = [2]float64{v, v}
	}
	return buf
}

func newTestPlayer() (*Player, *audio.FakeBackend, *recordingSink) {
	backend := audio.NewFakeBackend()
	backend.AddTrack("/music/song.mp3", tone(0.5, 4410))
	sink := &recordingSink{}
	return New(backend, sink), backend, sink
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitForRendering(t *testing.T, backend *audio.FakeBackend, n int) *audio.FakeRendering {
	t.Helper()
	waitFor(t, "rendering to start", func() bool { return len(backend.Renderings()) >= n })
	return backend.Renderings()[n-1]
}

func TestLoadResetsGainAndGoesIdle(t *testing.T) {
	p, _, sink := newTestPlayer()
	p.SetGain(-15)
	p.Load("/music/song.mp3")

	if got := p.TrackName(); got != "song.mp3" {
		t.Errorf("TrackName = %q, want song.mp3", got)
	}
	if got := p.Gain(); got != DefaultGainDB {
		t.Errorf("gain after load = %d, want %d", got, DefaultGainDB)
	}
	if got := p.Status(); got != StatusIdle {
		t.Errorf("status after load = %v, want Idle", got)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.loaded) != 1 || sink.loaded[0] != "song.mp3" {
		t.Errorf("sink loaded = %v, want [song.mp3]", sink.loaded)
	}
}

func TestPlayWithoutLoadWarns(t *testing.T) {
	p, backend, sink := newTestPlayer()
	p.Play()

	if got := p.Status(); got != StatusIdle {
		t.Errorf("status = %v, want Idle", got)
	}
	if got := sink.warningCount(); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}
	if got := sink.loadErrCount(); got != 0 {
		t.Errorf("load errors = %d, want 0 (warning, not error)", got)
	}
	if got := len(backend.Renderings()); got != 0 {
		t.Errorf("renderings started = %d, want 0", got)
	}
}

func TestLoadFailureKeepsPriorTrack(t *testing.T) {
	p, backend, sink := newTestPlayer()
	p.Load("/music/song.mp3")
	p.SetGain(5)

	p.Load("/music/missing.mp3")

	if got := sink.loadErrCount(); got != 1 {
		t.Fatalf("load errors = %d, want 1", got)
	}
	if got := p.TrackName(); got != "song.mp3" {
		t.Errorf("prior track lost: TrackName = %q", got)
	}
	if got := p.Gain(); got != 5 {
		t.Errorf("gain reset on failed load: %d", got)
	}

	backend.FailDecode(errors.New("ffmpeg not found"))
	p.Load("/music/song.mp3")
	if got := sink.loadErrCount(); got != 2 {
		t.Fatalf("load errors = %d, want 2", got)
	}
	if got := p.TrackName(); got != "song.mp3" {
		t.Errorf("prior track lost after decoder failure: %q", got)
	}
}

func TestNaturalCompletionFinishes(t *testing.T) {
	p, backend, sink := newTestPlayer()
	p.Load("/music/song.mp3")
	p.Play()

	if got := p.Status(); got != StatusPlaying {
		t.Fatalf("status after Play = %v, want Playing", got)
	}
	rend := waitForRendering(t, backend, 1)
	rend.Finish()

	waitFor(t, "Finished status", func() bool { return p.Status() == StatusFinished })
	if got := rend.StopCount(); got != 0 {
		t.Errorf("natural completion saw %d stop attempts, want 0", got)
	}

	log := sink.statusLog()
	want := []Status{StatusIdle, StatusPlaying, StatusFinished}
	if len(log) != len(want) {
		t.Fatalf("status log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("status log = %v, want %v", log, want)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p, backend, _ := newTestPlayer()
	p.Load("/music/song.mp3")
	p.Play()
	rend := waitForRendering(t, backend, 1)
	waitFor(t, "rendering handle to be owned", func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.rendering != nil
	})

	p.Stop()
	if got := p.Status(); got != StatusStopped {
		t.Fatalf("status = %v, want Stopped", got)
	}
	if got := rend.StopCount(); got != 1 {
		t.Fatalf("stop attempts = %d, want 1", got)
	}

	p.Stop()
	if got := p.Status(); got != StatusStopped {
		t.Errorf("second Stop changed status to %v", got)
	}
	if got := rend.StopCount(); got != 1 {
		t.Errorf("second Stop attempted termination again: %d", got)
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	p, _, sink := newTestPlayer()
	p.Load("/music/song.mp3")
	before := len(sink.statusLog())
	p.Stop()
	if got := p.Status(); got != StatusIdle {
		t.Errorf("status = %v, want Idle", got)
	}
	if got := len(sink.statusLog()); got != before {
		t.Errorf("Stop while idle notified the sink")
	}
}

func TestPlayWhilePlayingStopsOldRendering(t *testing.T) {
	p, backend, _ := newTestPlayer()
	p.Load("/music/song.mp3")
	p.Play()
	first := waitForRendering(t, backend, 1)

	p.Play()
	waitFor(t, "old rendering to be stopped", func() bool { return first.StopCount() > 0 })
	second := waitForRendering(t, backend, 2)
	if second == first {
		t.Fatal("no new rendering started")
	}
	if got := p.Status(); got != StatusPlaying {
		t.Errorf("status = %v, want Playing", got)
	}
}

func TestGainAppliedFreshNotCompounded(t *testing.T) {
	p, backend, _ := newTestPlayer()
	p.Load("/music/song.mp3")
	p.SetGain(-10)

	p.Play()
	first := waitForRendering(t, backend, 1)
	p.Stop()
	if got := p.Status(); got != StatusStopped {
		t.Fatalf("status = %v, want Stopped", got)
	}
	if got := p.TrackName(); got != "song.mp3" {
		t.Fatalf("TrackName = %q, want song.mp3", got)
	}

	p.Play()
	second := waitForRendering(t, backend, 2)

	want := 0.5 * math.Pow(10, -10.0/20)
	for i, r := range []*audio.FakeRendering{first, second} {
		if got := r.Buffer.Peak(); math.Abs(got-want) > 0.001 {
			t.Errorf("play %d: rendered peak = %v, want ~%v (gain must not compound)", i+1, got, want)
		}
	}
}

func TestSetGainClamps(t *testing.T) {
	p, _, _ := newTestPlayer()
	p.SetGain(-40)
	if got := p.Gain(); got != MinGainDB {
		t.Errorf("gain = %d, want %d", got, MinGainDB)
	}
	p.SetGain(99)
	if got := p.Gain(); got != MaxGainDB {
		t.Errorf("gain = %d, want %d", got, MaxGainDB)
	}
}

func TestRenderFailureStillFinishes(t *testing.T) {
	backend := &failingRenderBackend{FakeBackend: audio.NewFakeBackend()}
	backend.AddTrack("/music/song.mp3", tone(0.5, 441))
	sink := &recordingSink{}
	p := New(backend, sink)

	p.Load("/music/song.mp3")
	p.Play()
	waitFor(t, "Finished status", func() bool { return p.Status() == StatusFinished })
}

type failingRenderBackend struct {
	*audio.FakeBackend
}

func (b *failingRenderBackend) Render(*audio.Buffer) (audio.Rendering, error) {
	return nil, errors.New("no external audio player found")
}
