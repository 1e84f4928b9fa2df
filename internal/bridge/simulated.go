package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"tvremote/internal/logger"
)

// Simulated is a bridge that talks to no television. It records what it was
// asked to do, which makes it useful in test mode.
type Simulated struct {
	name   string
	power  *powerOffTracker
	logger zerolog.Logger

	mutex     sync.Mutex
	sent      []string
	powerOffs int
}

// NewSimulated creates a simulated bridge. now may be nil.
func NewSimulated(name string, now func() time.Time) *Simulated {
	return &Simulated{
		name:   name,
		power:  newPowerOffTracker(now),
		logger: logger.ForComponent("simulated_bridge").With().Str("tv", name).Logger(),
	}
}

// PowerOff records the request and opens the power-off window
func (s *Simulated) PowerOff(ctx context.Context) error {
	s.power.start()

	s.mutex.Lock()
	s.powerOffs++
	s.mutex.Unlock()

	s.logger.Info().Msg("Test mode: power off simulated")
	return nil
}

// PowerOffInProgress reports whether the power-off window is open
func (s *Simulated) PowerOffInProgress() bool {
	return s.power.inProgress()
}

// SendKeys records the keys
func (s *Simulated) SendKeys(ctx context.Context, keys []string) error {
	s.mutex.Lock()
	s.sent = append(s.sent, keys...)
	s.mutex.Unlock()

	s.logger.Info().Strs("keys", keys).Msg("Test mode: keys simulated")
	return nil
}

// Sent returns every key sent so far
func (s *Simulated) Sent() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sent := make([]string, len(s.sent))
	copy(sent, s.sent)
	return sent
}

// PowerOffs returns how many times PowerOff was called
func (s *Simulated) PowerOffs() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.powerOffs
}
