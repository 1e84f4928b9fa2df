package bridge

import (
	"sync"
	"time"
)

// PowerOffWindow is how long after a power-off request the TV is treated as
// still shutting down
const PowerOffWindow = 15 * time.Second

// powerOffTracker remembers when the last power-off window ends
type powerOffTracker struct {
	mutex sync.Mutex
	end   time.Time
	now   func() time.Time
}

func newPowerOffTracker(now func() time.Time) *powerOffTracker {
	if now == nil {
		now = time.Now
	}
	return &powerOffTracker{now: now}
}

func (p *powerOffTracker) start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.end = p.now().Add(PowerOffWindow)
}

func (p *powerOffTracker) inProgress() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return !p.end.IsZero() && p.end.After(p.now())
}
