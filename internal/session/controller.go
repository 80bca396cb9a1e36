package session

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/cadenceaudio/cadence/internal/clock"
	"github.com/cadenceaudio/cadence/internal/decode"
	"github.com/cadenceaudio/cadence/internal/track"
)

// Decoder produces a playable stream for a locator, discarding the first
// skip worth of audio.
type Decoder interface {
	Decode(locator string, skip time.Duration) (*decode.Result, error)
}

// Sink is the output device surface the controller drives.
type Sink interface {
	ReplaceAndPlay(stream beep.StreamSeekCloser, format beep.Format, onFinished func())
	Pause()
	Resume()
	Stop()
	Close() error
}

// controller orchestrates decoder, sink and clock for a single track.
//
// Mutating operations run on the session worker only. The mutex exists for
// the snapshot reads (position, state, track info) exposed to arbitrary
// goroutines, and for the finish callback arriving from the speaker
// goroutine. Sink calls are never made while holding the mutex: the finish
// callback takes it while the speaker lock is held.
type controller struct {
	dec Decoder
	out Sink

	mu         sync.Mutex
	clk        *clock.Clock
	locator    string
	info       *track.Info
	generation int
	done       chan struct{}
	doneClosed bool
}

func newController(dec Decoder, out Sink) *controller {
	return &controller{dec: dec, out: out, clk: clock.New()}
}

// play decodes the locator from the start and replaces the current track.
// On any decode failure the previous playback state is left untouched.
func (c *controller) play(locator string) (track.Info, error) {
	res, err := c.dec.Decode(locator, 0)
	if err != nil {
		return track.Info{}, err
	}

	// The clock must be Playing before the sink call: a stream that
	// drains instantly fires the finish callback inside ReplaceAndPlay,
	// and that callback has to find a running clock to stop.
	c.mu.Lock()
	gen := c.beginTrackLocked(locator, res.Info)
	c.clk.Play()
	c.mu.Unlock()

	c.out.ReplaceAndPlay(res.Stream, res.Format, func() { c.finished(gen) })

	return res.Info, nil
}

// pause commits the clock position first so the snapshot reflects time
// taken before the sink call; the skew is bounded, not exact.
func (c *controller) pause() {
	c.mu.Lock()
	c.clk.Pause()
	c.mu.Unlock()
	c.out.Pause()
}

func (c *controller) resume() {
	c.mu.Lock()
	c.clk.Resume()
	c.mu.Unlock()
	c.out.Resume()
}

// stop halts the sink and resets the clock. The locator is retained so a
// later seek re-opens the same source instead of requiring a fresh play.
func (c *controller) stop() {
	c.mu.Lock()
	c.generation++
	c.clk.Stop()
	c.closeDoneLocked()
	c.mu.Unlock()
	c.out.Stop()
}

// seekTo re-decodes the current locator discarding the first target worth
// of audio. Seeking at or past a known end stops playback and succeeds:
// that is a product decision, not an error.
func (c *controller) seekTo(target time.Duration) error {
	if target < 0 {
		target = 0
	}

	c.mu.Lock()
	locator := c.locator
	info := c.info
	c.mu.Unlock()

	if locator == "" {
		return ErrNoTrackLoaded
	}
	if info != nil {
		if total, ok := info.Duration.Get(); ok && target >= total {
			c.stop()
			return nil
		}
	}

	res, err := c.dec.Decode(locator, target)
	if err != nil {
		return err
	}

	// Same ordering constraint as play: the clock transition commits
	// before the sink call so an instantly-draining stream's finish
	// callback stops a running clock instead of racing it.
	c.mu.Lock()
	gen := c.beginTrackLocked(locator, res.Info)
	c.clk.SeekTo(target)
	c.mu.Unlock()

	c.out.ReplaceAndPlay(res.Stream, res.Format, func() { c.finished(gen) })

	return nil
}

// advance seeks relative to the current position, clamped at zero. A
// positive delta near the end of the track lands in seekTo's past-end
// stop policy.
func (c *controller) advance(delta time.Duration) error {
	target := c.position() + delta
	if target < 0 {
		target = 0
	}
	return c.seekTo(target)
}

func (c *controller) position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clk.Position()
}

func (c *controller) state() clock.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clk.State()
}

func (c *controller) trackInfo() (track.Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return track.Info{}, false
	}
	return *c.info, true
}

// doneChan reports completion of the current track. With no track active
// it returns an already-closed channel.
func (c *controller) doneChan() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil || c.doneClosed {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

// finished handles the sink's natural end-of-stream callback. The
// generation check discards callbacks from streams that were already
// replaced or stopped.
func (c *controller) finished(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.clk.Stop()
	c.closeDoneLocked()
}

func (c *controller) beginTrackLocked(locator string, info track.Info) int {
	c.generation++
	c.closeDoneLocked()
	c.done = make(chan struct{})
	c.doneClosed = false
	c.locator = locator
	c.info = &info
	return c.generation
}

func (c *controller) closeDoneLocked() {
	if c.done != nil && !c.doneClosed {
		close(c.done)
		c.doneClosed = true
	}
}
