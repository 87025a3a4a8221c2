package constants

import "time"

const (
	// Interaction decay: feed-driven mirror updates stay suppressed this long
	// after the last timeline interaction.
	InteractionDecayWindow = 1500 * time.Millisecond

	// Accepted year range for typed year input and YYYY-MM arguments.
	MinYear = 1900
	MaxYear = 2100

	// Wheel navigation pacing
	DefaultWheelRatePerSecond = 6.0
	DefaultWheelBurst         = 1

	// File watcher coalescing window
	WatchCoalesceDelay = 200 * time.Millisecond

	// Parse cache: files untouched for this long skip the fingerprint check
	FingerprintSkipAge = 48 * time.Hour
)
