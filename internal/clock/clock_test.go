package clock

import (
	"testing"
	"testing/synctest"
	"time"
)

// fakeNow returns a clock whose time source is manually advanced.
func fakeNow() (*Clock, *time.Time) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	c := New()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{State(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Stopped, false},
		{Playing, true},
		{Paused, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsActive(); got != tt.want {
				t.Errorf("State.IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClock_InitialState(t *testing.T) {
	c := New()
	if c.State() != Stopped {
		t.Errorf("new clock state = %v, want Stopped", c.State())
	}
	if c.Position() != 0 {
		t.Errorf("new clock position = %v, want 0", c.Position())
	}
}

func TestClock_PlayAdvances(t *testing.T) {
	c, now := fakeNow()

	c.Play()
	if c.State() != Playing {
		t.Fatalf("state = %v, want Playing", c.State())
	}
	if c.Position() != 0 {
		t.Errorf("position right after Play = %v, want 0", c.Position())
	}

	*now = now.Add(1500 * time.Millisecond)
	if got := c.Position(); got != 1500*time.Millisecond {
		t.Errorf("position = %v, want 1.5s", got)
	}
}

func TestClock_PauseCommitsAndFreezes(t *testing.T) {
	c, now := fakeNow()

	c.Play()
	*now = now.Add(1 * time.Second)
	c.Pause()

	if c.State() != Paused {
		t.Fatalf("state = %v, want Paused", c.State())
	}

	// Position is held while paused, no matter how much time passes.
	*now = now.Add(10 * time.Second)
	if got := c.Position(); got != 1*time.Second {
		t.Errorf("paused position = %v, want 1s", got)
	}
}

func TestClock_ResumeContinuesFromCommitted(t *testing.T) {
	c, now := fakeNow()

	c.Play()
	*now = now.Add(1 * time.Second)
	c.Pause()
	before := c.Position()

	*now = now.Add(5 * time.Second)
	c.Resume()
	after := c.Position()

	if before != after {
		t.Errorf("position changed across Pause/Resume: %v != %v", before, after)
	}

	*now = now.Add(500 * time.Millisecond)
	if got := c.Position(); got != 1500*time.Millisecond {
		t.Errorf("position after resume+500ms = %v, want 1.5s", got)
	}
}

func TestClock_SeekToOverwritesPosition(t *testing.T) {
	c, now := fakeNow()

	c.Play()
	*now = now.Add(1 * time.Second)

	c.SeekTo(2500 * time.Millisecond)
	if c.State() != Playing {
		t.Fatalf("state after seek = %v, want Playing", c.State())
	}
	if got := c.Position(); got != 2500*time.Millisecond {
		t.Errorf("position after seek = %v, want 2.5s", got)
	}

	*now = now.Add(250 * time.Millisecond)
	if got := c.Position(); got != 2750*time.Millisecond {
		t.Errorf("position = %v, want 2.75s", got)
	}
}

func TestClock_SeekToFromPaused(t *testing.T) {
	c, now := fakeNow()

	c.Play()
	*now = now.Add(1 * time.Second)
	c.Pause()

	c.SeekTo(4 * time.Second)
	if c.State() != Playing {
		t.Errorf("state after seek from paused = %v, want Playing", c.State())
	}
	if got := c.Position(); got != 4*time.Second {
		t.Errorf("position = %v, want 4s", got)
	}
}

func TestClock_SeekToClampsNegative(t *testing.T) {
	c, _ := fakeNow()
	c.Play()
	c.SeekTo(-3 * time.Second)
	if got := c.Position(); got != 0 {
		t.Errorf("position after negative seek = %v, want 0", got)
	}
}

func TestClock_StopClearsEverything(t *testing.T) {
	c, now := fakeNow()

	c.Play()
	*now = now.Add(2 * time.Second)
	c.Stop()

	if c.State() != Stopped {
		t.Fatalf("state = %v, want Stopped", c.State())
	}
	if got := c.Position(); got != 0 {
		t.Errorf("position after stop = %v, want 0", got)
	}
}

func TestClock_InvalidTransitionsAreNoOps(t *testing.T) {
	c, now := fakeNow()

	// Pause while stopped.
	c.Pause()
	if c.State() != Stopped {
		t.Errorf("Pause while stopped changed state to %v", c.State())
	}

	// Resume while stopped.
	c.Resume()
	if c.State() != Stopped {
		t.Errorf("Resume while stopped changed state to %v", c.State())
	}

	// Resume while playing must not reset runningSince.
	c.Play()
	*now = now.Add(1 * time.Second)
	c.Resume()
	if got := c.Position(); got != 1*time.Second {
		t.Errorf("Resume while playing disturbed position: %v", got)
	}

	// Pause twice commits only once.
	c.Pause()
	*now = now.Add(1 * time.Second)
	c.Pause()
	if got := c.Position(); got != 1*time.Second {
		t.Errorf("double Pause disturbed position: %v", got)
	}
}

// TestClock_MonotonicWhilePlaying samples the position while the clock runs
// against the real time source inside a synctest bubble.
func TestClock_MonotonicWhilePlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := New()
		c.Play()

		var last time.Duration
		for i := 0; i < 10; i++ {
			time.Sleep(50 * time.Millisecond)
			pos := c.Position()
			if pos < last {
				t.Fatalf("position went backwards: %v < %v", pos, last)
			}
			last = pos
		}

		if last != 500*time.Millisecond {
			t.Errorf("position after 10x50ms = %v, want 500ms", last)
		}
	})
}

// TestClock_PauseResumeRoundTrip verifies the position is identical before
// Pause and after Resume under real sleeps.
func TestClock_PauseResumeRoundTrip(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := New()
		c.Play()
		time.Sleep(1 * time.Second)

		before := c.Position()
		c.Pause()
		time.Sleep(3 * time.Second)
		c.Resume()
		after := c.Position()

		if diff := after - before; diff < 0 || diff > 5*time.Millisecond {
			t.Errorf("pause/resume drift = %v, want within [0, 5ms]", diff)
		}
	})
}
