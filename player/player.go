// Package player owns the playback state machine: which track is
// loaded, the pending gain setting, and the single active rendering.
// It never touches widgets directly; everything user-visible goes
// through the Sink, so the GUI stays swappable and tests run headless.
package player

import (
	"path/filepath"
	"sync"

	"tunebox/audio"
	"tunebox/log"
)

// Gain slider range in decibels. 0 dB plays the track as decoded.
const (
	MinGainDB     = -20
	MaxGainDB     = 10
	DefaultGainDB = 0
)

// Track is one successfully loaded file. Replaced wholesale on the
// next successful load, never mutated in place.
type Track struct {
	Buffer *audio.Buffer
	Name   string
}

// Sink receives everything the controller wants shown to the user.
// Implementations are called from arbitrary goroutines and must
// marshal onto their own UI context.
type Sink interface {
	TrackLoaded(name string)
	LoadFailed(err error)
	NoTrackLoaded()
	GainChanged(db int)
	StatusChanged(s Status)
}

// Player is the playback controller. One instance per window; all
// fields live here rather than in package globals so the controller
// can be constructed against a fake backend in tests.
type Player struct {
	backend audio.Backend
	sink    Sink

	mu         sync.Mutex
	track      *Track
	gain       int
	status     Status
	rendering  audio.Rendering
	generation uint64 // bumped whenever the active rendering is superseded
}

func New(backend audio.Backend, sink Sink) *Player {
	return &Player{
		backend: backend,
		sink:    sink,
		gain:    DefaultGainDB,
		status:  StatusIdle,
	}
}

// Load decodes path and makes it the current track. On decode failure
// the sink is told and every piece of prior state, including a
// previously loaded track, stays untouched. On success the gain
// resets to 0 dB, any in-flight rendering is stopped, and the
// controller returns to Idle.
func (p *Player) Load(path string) {
	buf, err := p.backend.Decode(path)
	if err != nil {
		log.Warnf("load failed: %v", err)
		p.sink.LoadFailed(err)
		return
	}
	name := filepath.Base(path)

	p.mu.Lock()
	p.track = &Track{Buffer: buf, Name: name}
	p.gain = DefaultGainDB
	p.generation++
	old := p.rendering
	p.rendering = nil
	p.status = StatusIdle
	p.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	log.TrackLoaded(name, buf.Duration(), buf.Rate)
	p.sink.TrackLoaded(name)
	p.sink.GainChanged(DefaultGainDB)
	p.sink.StatusChanged(StatusIdle)
}

// Play applies the current gain to the loaded track and starts a
// rendering on a background goroutine. Without a track it only warns.
// If a rendering is already active it is stopped first; the old
// process dies asynchronously, so a brief overlap with the new one is
// possible.
func (p *Player) Play() {
	p.mu.Lock()
	if p.track == nil {
		p.mu.Unlock()
		log.Info("play_without_track")
		p.sink.NoTrackLoaded()
		return
	}
	var old audio.Rendering
	if p.status == StatusPlaying {
		old = p.rendering
		p.rendering = nil
	}
	p.generation++
	gen := p.generation
	buf, db, name := p.track.Buffer, p.gain, p.track.Name
	p.status = StatusPlaying
	p.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	log.PlaybackStart(name, db)
	p.sink.StatusChanged(StatusPlaying)
	go p.render(gen, buf, db)
}

// render runs off the event loop: gain is applied to a fresh copy of
// the stored buffer (never compounded), the backend spawns the player
// process, and we block until it exits.
func (p *Player) render(gen uint64, buf *audio.Buffer, db int) {
	rend, err := p.backend.Render(audio.AdjustGain(buf, db))
	if err != nil {
		// Render failures are absorbed: the status still reaches
		// Finished even though nothing played.
		log.Warnf("render failed: %v", err)
		p.finish(gen)
		return
	}

	p.mu.Lock()
	if gen != p.generation || p.status != StatusPlaying {
		// Superseded while the process was being spawned.
		p.mu.Unlock()
		rend.Stop()
		return
	}
	p.rendering = rend
	p.mu.Unlock()

	<-rend.Done()
	p.finish(gen)
}

// finish flips Playing to Finished for the rendering identified by
// gen. Completions of superseded renderings are ignored so they never
// clobber the status of a newer one.
func (p *Player) finish(gen uint64) {
	p.mu.Lock()
	if gen != p.generation || p.status != StatusPlaying {
		p.mu.Unlock()
		return
	}
	p.status = StatusFinished
	p.rendering = nil
	name := ""
	if p.track != nil {
		name = p.track.Name
	}
	p.mu.Unlock()

	log.PlaybackFinished(name)
	p.sink.StatusChanged(StatusFinished)
}

// Stop terminates the active rendering. A no-op in every state but
// Playing; calling it twice attempts no second termination.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.status != StatusPlaying {
		p.mu.Unlock()
		return
	}
	p.status = StatusStopped
	rend := p.rendering
	p.rendering = nil
	name := ""
	if p.track != nil {
		name = p.track.Name
	}
	p.mu.Unlock()

	if rend != nil {
		rend.Stop()
	}

	log.PlaybackStop(name)
	p.sink.StatusChanged(StatusStopped)
}

// SetGain stores db, clamped to [MinGainDB, MaxGainDB]. The new value
// takes effect at the next Play, not on in-flight playback.
func (p *Player) SetGain(db int) {
	if db < MinGainDB {
		db = MinGainDB
	}
	if db > MaxGainDB {
		db = MaxGainDB
	}
	p.mu.Lock()
	p.gain = db
	p.mu.Unlock()
	p.sink.GainChanged(db)
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Player) Gain() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gain
}

// TrackName returns the display name of the loaded track, or "" when
// nothing is loaded.
func (p *Player) TrackName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return ""
	}
	return p.track.Name
}
