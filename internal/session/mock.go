package session

import (
	"sync"
	"time"

	"github.com/cadenceaudio/cadence/internal/clock"
	"github.com/cadenceaudio/cadence/internal/track"
)

// Mock is a test double for the session Service.
type Mock struct {
	mu sync.Mutex

	state    clock.State
	position time.Duration
	info     *track.Info
	playErr  error
	seekErr  error

	playCalls []string
	seekCalls []time.Duration
	done      chan struct{}
}

// NewMock creates a stopped mock service.
func NewMock() *Mock {
	return &Mock{done: make(chan struct{})}
}

func (m *Mock) Play(locator string) (track.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, locator)
	if m.playErr != nil {
		return track.Info{}, m.playErr
	}
	m.state = clock.Playing
	m.position = 0
	info := track.Info{Path: locator}
	m.info = &info
	return info, nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == clock.Playing {
		m.state = clock.Paused
	}
	return nil
}

func (m *Mock) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == clock.Paused {
		m.state = clock.Playing
	}
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = clock.Stopped
	m.position = 0
	return nil
}

func (m *Mock) SeekTo(target time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, target)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = target
	m.state = clock.Playing
	return nil
}

func (m *Mock) Advance(delta time.Duration) error {
	m.mu.Lock()
	target := m.position + delta
	m.mu.Unlock()
	if target < 0 {
		target = 0
	}
	return m.SeekTo(target)
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) State() clock.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) TrackInfo() (track.Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.info == nil {
		return track.Info{}, false
	}
	return *m.info, true
}

func (m *Mock) Done() <-chan struct{} { return m.done }

func (m *Mock) Close() error { return nil }

// Test helpers

func (m *Mock) SetState(s clock.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetTrackInfo(info track.Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info = &info
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) PlayCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.playCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// Verify Mock implements Service at compile time.
var _ Service = (*Mock)(nil)
