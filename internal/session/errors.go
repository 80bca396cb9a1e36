package session

import "errors"

var (
	// ErrDeviceUnavailable means no audio output device could be opened.
	// It is fatal to session construction; nothing else is.
	ErrDeviceUnavailable = errors.New("no audio output device available")

	// ErrNoTrackLoaded is returned by seek operations before any track
	// has been loaded.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrSessionClosed is returned by commands issued after Close.
	ErrSessionClosed = errors.New("session closed")
)
