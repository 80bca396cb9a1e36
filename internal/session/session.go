// Package session hosts the playback controller behind a single worker
// goroutine. The worker exclusively owns the output device and the decode
// pipeline; callers talk to it through a serialized command queue and get
// position snapshots without going through the queue at all.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cadenceaudio/cadence/internal/clock"
	"github.com/cadenceaudio/cadence/internal/decode"
	"github.com/cadenceaudio/cadence/internal/sink"
	"github.com/cadenceaudio/cadence/internal/track"
)

type cmdKind int

const (
	cmdPlay cmdKind = iota
	cmdPause
	cmdResume
	cmdStop
	cmdSeek
	cmdAdvance
)

func (k cmdKind) String() string {
	switch k {
	case cmdPlay:
		return "play"
	case cmdPause:
		return "pause"
	case cmdResume:
		return "resume"
	case cmdStop:
		return "stop"
	case cmdSeek:
		return "seek"
	case cmdAdvance:
		return "advance"
	default:
		return "unknown"
	}
}

type command struct {
	kind    cmdKind
	locator string
	target  time.Duration
	delta   time.Duration
	reply   chan result
}

type result struct {
	info track.Info
	err  error
}

// Session is a single-track player: one output device, one worker, at
// most one active track. Commands are processed strictly in arrival
// order; a play or seek blocks the worker for the duration of its decode,
// and there is no cancellation of an in-flight decode.
type Session struct {
	ctrl *controller

	cmds      chan command
	closed    chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	log *logrus.Entry
}

// New opens the output device and starts the worker. The only fatal
// construction failure is an unavailable device.
func New(deviceBuffer time.Duration) (*Session, error) {
	out, err := sink.New(deviceBuffer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return start(decode.NewSelector(), out), nil
}

// start wires a session around the given collaborators and launches the
// worker.
func start(dec Decoder, out Sink) *Session {
	s := &Session{
		ctrl:    newController(dec, out),
		cmds:    make(chan command),
		closed:  make(chan struct{}),
		stopped: make(chan struct{}),
		log:     logrus.WithField("component", "session"),
	}
	go s.run()
	return s
}

// run consumes commands until Close. A failed command is logged and
// replied to its caller; it never terminates the worker.
func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case cmd := <-s.cmds:
			s.handle(cmd)
		case <-s.closed:
			s.ctrl.stop()
			_ = s.ctrl.out.Close()
			return
		}
	}
}

func (s *Session) handle(cmd command) {
	var res result
	switch cmd.kind {
	case cmdPlay:
		res.info, res.err = s.ctrl.play(cmd.locator)
	case cmdPause:
		s.ctrl.pause()
	case cmdResume:
		s.ctrl.resume()
	case cmdStop:
		s.ctrl.stop()
	case cmdSeek:
		res.err = s.ctrl.seekTo(cmd.target)
	case cmdAdvance:
		res.err = s.ctrl.advance(cmd.delta)
	}
	if res.err != nil {
		s.log.WithError(res.err).WithField("command", cmd.kind.String()).
			Warn("playback command failed")
	}
	cmd.reply <- res
}

func (s *Session) send(cmd command) result {
	cmd.reply = make(chan result, 1)
	select {
	case s.cmds <- cmd:
		return <-cmd.reply
	case <-s.closed:
		return result{err: ErrSessionClosed}
	}
}

// Play loads and starts the given locator, replacing any current track.
func (s *Session) Play(locator string) (track.Info, error) {
	res := s.send(command{kind: cmdPlay, locator: locator})
	return res.info, res.err
}

// Pause suspends playback; no-op if nothing is playing.
func (s *Session) Pause() error {
	return s.send(command{kind: cmdPause}).err
}

// Resume continues paused playback; no-op if nothing is paused.
func (s *Session) Resume() error {
	return s.send(command{kind: cmdResume}).err
}

// Stop halts playback and resets the position.
func (s *Session) Stop() error {
	return s.send(command{kind: cmdStop}).err
}

// SeekTo jumps to an absolute position in the current track.
func (s *Session) SeekTo(target time.Duration) error {
	return s.send(command{kind: cmdSeek, target: target}).err
}

// Advance skips relative to the current position; negative deltas rewind.
func (s *Session) Advance(delta time.Duration) error {
	return s.send(command{kind: cmdAdvance, delta: delta}).err
}

// Position returns the current playback position as a non-blocking
// snapshot; it never waits on the command queue.
func (s *Session) Position() time.Duration {
	return s.ctrl.position()
}

// State returns the current playback state.
func (s *Session) State() clock.State {
	return s.ctrl.state()
}

// TrackInfo returns the descriptor of the most recently loaded track.
func (s *Session) TrackInfo() (track.Info, bool) {
	return s.ctrl.trackInfo()
}

// Done reports when the current track finishes or is stopped.
func (s *Session) Done() <-chan struct{} {
	return s.ctrl.doneChan()
}

// Close shuts the worker down and releases the device.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	<-s.stopped
	return nil
}
