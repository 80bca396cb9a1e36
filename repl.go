package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cadenceaudio/cadence/internal/clock"
	"github.com/cadenceaudio/cadence/internal/session"
	"github.com/cadenceaudio/cadence/internal/state"
	"github.com/cadenceaudio/cadence/internal/track"
)

const helpText = `Commands:
  play <path>   load and play a file
  pause         pause playback
  resume        resume playback
  stop          stop playback
  seek <ms>     jump to an absolute position in milliseconds
  + <seconds>   skip forward
  - <seconds>   skip backward
  pos           show position and state
  info          show track metadata
  help          show this help
  quit          exit`

type repl struct {
	svc      session.Service
	stateMgr *state.Manager
	in       io.Reader
	out      io.Writer
}

func newREPL(svc session.Service, stateMgr *state.Manager, in io.Reader, out io.Writer) *repl {
	return &repl{svc: svc, stateMgr: stateMgr, in: in, out: out}
}

func (r *repl) run() error {
	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}

		quit := r.execute(scanner.Text())
		r.savePosition()
		if quit {
			break
		}
	}
	return scanner.Err()
}

// execute runs one command line. Returns true when the session should end.
func (r *repl) execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "play":
		if len(args) == 0 {
			fmt.Fprintln(r.out, "usage: play <path>")
			return false
		}
		info, err := r.svc.Play(strings.Join(args, " "))
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		printNowPlaying(r.out, info)

	case "pause":
		r.report(r.svc.Pause())

	case "resume":
		r.report(r.svc.Resume())

	case "stop":
		r.report(r.svc.Stop())

	case "seek":
		ms, ok := r.parseInt(args, "seek <ms>")
		if !ok {
			return false
		}
		r.report(r.svc.SeekTo(time.Duration(ms) * time.Millisecond))

	case "+":
		secs, ok := r.parseInt(args, "+ <seconds>")
		if !ok {
			return false
		}
		r.report(r.svc.Advance(time.Duration(secs) * time.Second))

	case "-":
		secs, ok := r.parseInt(args, "- <seconds>")
		if !ok {
			return false
		}
		r.report(r.svc.Advance(-time.Duration(secs) * time.Second))

	case "pos":
		r.printPosition()

	case "info":
		r.printInfo()

	case "help":
		fmt.Fprintln(r.out, helpText)

	case "quit", "exit":
		return true

	default:
		fmt.Fprintf(r.out, "unknown command %q, try help\n", cmd)
	}

	return false
}

// parseInt parses the single numeric argument of a transport command.
// Unparsable input is rejected without touching playback.
func (r *repl) parseInt(args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "usage: %s\n", usage)
		return 0, false
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(r.out, "invalid argument %q: expected a number\n", args[0])
		return 0, false
	}
	return n, true
}

func (r *repl) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

func (r *repl) printPosition() {
	st := r.svc.State()
	if st == clock.Stopped {
		fmt.Fprintln(r.out, "stopped")
		return
	}

	line := fmt.Sprintf("%s %s", strings.ToLower(st.String()), formatDuration(r.svc.Position()))
	if info, ok := r.svc.TrackInfo(); ok {
		if d, ok := info.Duration.Get(); ok {
			line += " / " + formatDuration(d)
		}
	}
	fmt.Fprintln(r.out, line)
}

func (r *repl) printInfo() {
	info, ok := r.svc.TrackInfo()
	if !ok {
		fmt.Fprintln(r.out, "no track loaded")
		return
	}
	printNowPlaying(r.out, info)
}

// savePosition persists the current track and position after each
// command. Once a loaded track has stopped, by command or by reaching
// its end, the saved state is cleared so it is not resumed next run.
func (r *repl) savePosition() {
	if r.stateMgr == nil {
		return
	}

	info, ok := r.svc.TrackInfo()
	if !ok {
		return
	}

	if !r.svc.State().IsActive() {
		_ = r.stateMgr.ClearPlayback()
		return
	}

	r.stateMgr.SavePlayback(state.PlaybackState{
		Path:     info.Path,
		Position: r.svc.Position(),
	})
}

func printNowPlaying(out io.Writer, info track.Info) {
	title := info.Title
	if title == "" {
		title = info.Path
	}

	line := "Playing: " + title
	if info.Artist != "" {
		line += " - " + info.Artist
	}
	if d, ok := info.Duration.Get(); ok {
		line += " (" + formatDuration(d) + ")"
	}
	fmt.Fprintln(out, line)
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
