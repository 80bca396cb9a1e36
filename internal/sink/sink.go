// Package sink owns the audio output device and its append-only playback
// queue. The device handle is process-wide: exactly one Sink is expected
// per session, and all calls must come from the session's worker.
package sink

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// deviceRate is the fixed rate the output device is opened at; tracks with
// a different rate are resampled on the way in.
const deviceRate = beep.SampleRate(44100)

// Sink streams finite sample sequences to the output device.
type Sink struct {
	mu     sync.Mutex
	ctrl   *beep.Ctrl
	stream beep.StreamSeekCloser
}

// New opens the output device. Failure here means no playback is possible
// at all and the session must not be constructed.
func New(buffer time.Duration) (*Sink, error) {
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	if err := speaker.Init(deviceRate, deviceRate.N(buffer)); err != nil {
		return nil, err
	}
	return &Sink{}, nil
}

// ReplaceAndPlay atomically discards whatever is queued or playing and
// begins the new stream. onFinished fires when the stream drains
// naturally; it does not fire when the stream is replaced or stopped.
func (s *Sink) ReplaceAndPlay(stream beep.StreamSeekCloser, format beep.Format, onFinished func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	speaker.Clear()
	s.closeCurrentLocked()

	var play beep.Streamer = stream
	if format.SampleRate > 0 && format.SampleRate != deviceRate {
		play = beep.Resample(4, format.SampleRate, deviceRate, stream)
	}

	s.ctrl = &beep.Ctrl{Streamer: play}
	s.stream = stream

	seq := beep.Seq(s.ctrl, beep.Callback(onFinished))
	speaker.Play(seq)
}

// Pause suspends the device-level playback flag. No-op when nothing is
// loaded.
func (s *Sink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

// Resume clears the device-level pause flag. No-op when nothing is loaded.
func (s *Sink) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

// Stop halts playback and empties the queue. Pause and Resume become
// no-ops until the next ReplaceAndPlay.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Clear()
	s.closeCurrentLocked()
	s.ctrl = nil
}

// Close stops playback and releases the device.
func (s *Sink) Close() error {
	s.Stop()
	speaker.Close()
	return nil
}

func (s *Sink) closeCurrentLocked() {
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
}
