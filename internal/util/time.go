package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider resolves "now" and converts timestamps in the configured
// timezone. Post dates without an offset are read in this zone too.
type TimeProvider struct {
	mu       sync.RWMutex
	location *time.Location
	clock    func() time.Time
}

var (
	providerMu     sync.Mutex
	globalProvider *TimeProvider
)

// LoadLocation accepts "", "Local" or an IANA zone name.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w (try Local, UTC, Europe/Berlin, Asia/Tokyo)", name, err)
	}
	return loc, nil
}

// NewTimeProvider builds a provider for the named zone.
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &TimeProvider{location: loc, clock: time.Now}, nil
}

// InitializeTimeProvider sets the process-wide provider. On error the
// previous provider is kept.
func InitializeTimeProvider(timezone string) error {
	p, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}
	providerMu.Lock()
	globalProvider = p
	providerMu.Unlock()
	return nil
}

// GetTimeProvider returns the process-wide provider, defaulting to Local.
func GetTimeProvider() *TimeProvider {
	providerMu.Lock()
	defer providerMu.Unlock()
	if globalProvider == nil {
		globalProvider = &TimeProvider{location: time.Local, clock: time.Now}
	}
	return globalProvider
}

// SetClock overrides the wall clock, for tests and replay.
func (tp *TimeProvider) SetClock(clock func() time.Time) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if clock == nil {
		clock = time.Now
	}
	tp.clock = clock
}

// Location returns the configured zone.
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured zone.
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.clock().In(tp.location)
}

// In converts t to the configured zone.
func (tp *TimeProvider) In(t time.Time) time.Time {
	return t.In(tp.Location())
}

// Format renders t in the configured zone.
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return tp.In(t).Format(layout)
}
