package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cadenceaudio/cadence/internal/config"
	"github.com/cadenceaudio/cadence/internal/mpris"
	"github.com/cadenceaudio/cadence/internal/session"
	"github.com/cadenceaudio/cadence/internal/state"
	"github.com/cadenceaudio/cadence/internal/stderr"
)

var rootCmd = &cobra.Command{
	Use:   "cadence [file]",
	Short: "Minimal single-track audio player",
	Long: `Cadence plays a single audio file (MP3, WAV, FLAC or Ogg Vorbis) and
exposes transport commands on an interactive prompt. Damaged files fall
back to a tolerant decoder that skips unreadable sections.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func run(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg)

	// ALSA and minimp3 write noise straight to fd 2. Capture it before
	// the audio device is opened so it lands in the log instead of the
	// prompt.
	if err := stderr.Start(log); err != nil {
		log.WithError(err).Warn("stderr capture unavailable")
	}
	defer stderr.Stop()

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	svc, err := session.New(cfg.DeviceBuffer())
	if err != nil {
		return err
	}
	defer svc.Close()

	adapter, err := mpris.New(svc)
	if err != nil {
		log.WithError(err).Warn("mpris unavailable")
	} else {
		defer adapter.Close()
	}

	switch {
	case len(args) == 1:
		info, err := svc.Play(args[0])
		if err != nil {
			return err
		}
		printNowPlaying(os.Stdout, info)
	case cfg.ResumeLast:
		resumeLast(svc, stateMgr, log)
	}

	repl := newREPL(svc, stateMgr, os.Stdin, os.Stdout)
	return repl.run()
}

// newLogger configures the standard logrus logger, which is the one the
// session worker and decode selector log through.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			log.SetOutput(f)
			return log
		}
		log.WithError(err).Warn("could not open log file")
	}

	// Without a log file the prompt owns stdout, so keep the log quiet.
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func resumeLast(svc session.Service, stateMgr *state.Manager, log *logrus.Logger) {
	saved, err := stateMgr.GetPlayback()
	if err != nil || saved == nil {
		return
	}
	if _, err := os.Stat(saved.Path); err != nil {
		return
	}

	info, err := svc.Play(saved.Path)
	if err != nil {
		log.WithError(err).WithField("path", saved.Path).Warn("could not resume last track")
		return
	}
	printNowPlaying(os.Stdout, info)

	if saved.Position > 0 {
		if err := svc.SeekTo(saved.Position); err != nil {
			log.WithError(err).Warn("could not restore position")
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		stderr.WriteOriginal(fmt.Sprintf("Error: %v\n", err))
		os.Exit(1)
	}
}
