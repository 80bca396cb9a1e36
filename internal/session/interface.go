package session

import (
	"time"

	"github.com/cadenceaudio/cadence/internal/clock"
	"github.com/cadenceaudio/cadence/internal/track"
)

// Service defines the player contract for dependency injection and
// testing: the command table consumed by the CLI and remote shells.
type Service interface {
	Play(locator string) (track.Info, error)
	Pause() error
	Resume() error
	Stop() error
	SeekTo(target time.Duration) error
	Advance(delta time.Duration) error
	Position() time.Duration
	State() clock.State
	TrackInfo() (track.Info, bool)
	Done() <-chan struct{}
	Close() error
}

// Verify Session implements Service at compile time.
var _ Service = (*Session)(nil)
