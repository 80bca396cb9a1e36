// Package clock tracks elapsed playback position from wall-clock deltas
// recorded at transition points, without ever querying the audio backend.
package clock

import "time"

// State represents the clock's position in the playback state machine.
//
// Valid transitions:
//   - Stopped → Playing (via Play)
//   - Playing → Paused  (via Pause)
//   - Paused  → Playing (via Resume)
//   - Playing → Playing (via SeekTo)
//   - Paused  → Playing (via SeekTo)
//   - Playing → Stopped (via Stop)
//   - Paused  → Stopped (via Stop)
//
// Invalid transitions (Pause while Stopped, Resume while Playing, ...) are
// no-ops, never errors.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// Clock derives the current playback position purely from wall-clock time.
//
// position holds the last committed elapsed position. runningSince is set
// if and only if playback is currently advancing; while it is set, the
// current position is position plus the time elapsed since it was recorded.
type Clock struct {
	now func() time.Time

	state        State
	position     time.Duration
	runningSince time.Time
}

// New creates a stopped clock.
func New() *Clock {
	return &Clock{now: time.Now}
}

// Play resets the clock to position zero and starts it running.
func (c *Clock) Play() {
	c.state = Playing
	c.position = 0
	c.runningSince = c.now()
}

// Pause commits the elapsed position and stops the clock advancing.
// No-op unless currently Playing.
func (c *Clock) Pause() {
	if c.state != Playing {
		return
	}
	c.position += c.now().Sub(c.runningSince)
	c.runningSince = time.Time{}
	c.state = Paused
}

// Resume restarts the clock from the committed position.
// No-op unless currently Paused.
func (c *Clock) Resume() {
	if c.state != Paused {
		return
	}
	c.runningSince = c.now()
	c.state = Playing
}

// SeekTo overwrites the committed position and starts the clock running.
func (c *Clock) SeekTo(target time.Duration) {
	if target < 0 {
		target = 0
	}
	c.position = target
	c.runningSince = c.now()
	c.state = Playing
}

// Stop clears both fields; the position reads as zero afterwards.
func (c *Clock) Stop() {
	c.state = Stopped
	c.position = 0
	c.runningSince = time.Time{}
}

// Position returns the current elapsed position: the committed position
// plus the running delta while Playing, the committed position while
// Paused, zero while Stopped.
func (c *Clock) Position() time.Duration {
	if c.state == Playing {
		return c.position + c.now().Sub(c.runningSince)
	}
	return c.position
}

// State returns the current clock state.
func (c *Clock) State() State {
	return c.state
}
