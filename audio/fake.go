package audio

import (
	"fmt"
	"sync"
)

// FakeBackend implements Backend without touching the filesystem or
// spawning processes. Decode serves canned buffers by path; Render
// returns a FakeRendering that ends only when Finish or Stop is called.
type FakeBackend struct {
	mu        sync.Mutex
	tracks    map[string]*Buffer
	decodeErr error
	rendered  []*FakeRendering
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{tracks: make(map[string]*Buffer)}
}

func (f *FakeBackend) AddTrack(path string, buf *Buffer) {
	f.mu.Lock()
	f.tracks[path] = buf
	f.mu.Unlock()
}

// FailDecode makes every subsequent Decode return err (nil restores
// normal behavior).
func (f *FakeBackend) FailDecode(err error) {
	f.mu.Lock()
	f.decodeErr = err
	f.mu.Unlock()
}

func (f *FakeBackend) Decode(path string) (*Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decodeErr != nil {
		return nil, f.decodeErr
	}
	buf, ok := f.tracks[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", path)
	}
	return buf, nil
}

func (f *FakeBackend) Render(buf *Buffer) (Rendering, error) {
	r := &FakeRendering{Buffer: buf, done: make(chan struct{})}
	f.mu.Lock()
	f.rendered = append(f.rendered, r)
	f.mu.Unlock()
	return r, nil
}

// Renderings returns every rendering started so far, oldest first.
func (f *FakeBackend) Renderings() []*FakeRendering {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*FakeRendering, len(f.rendered))
	copy(out, f.rendered)
	return out
}

// FakeRendering stands in for one external player process.
type FakeRendering struct {
	Buffer *Buffer

	mu    sync.Mutex
	done  chan struct{}
	once  sync.Once
	stops int
}

func (r *FakeRendering) Done() <-chan struct{} { return r.done }

func (r *FakeRendering) Stop() {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

// Finish simulates the player process running to completion.
func (r *FakeRendering) Finish() {
	r.once.Do(func() { close(r.done) })
}

// StopCount reports how many termination attempts this rendering saw.
func (r *FakeRendering) StopCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}
