package viewer

import "time"

// Double-click thresholds used by window hosts.
const (
	DefaultDoubleClickInterval = 400 * time.Millisecond
	DefaultDoubleClickSlop     = 4
)

// ClickTracker turns a stream of primary-button presses into double clicks for hosts
// whose input layer only reports single presses.
type ClickTracker struct {
	Interval time.Duration
	// Slop is the largest distance in pixels between the two presses.
	Slop float32

	last    time.Duration
	lastX   float32
	lastY   float32
	pending bool
}

// NewClickTracker returns a tracker with the default thresholds.
func NewClickTracker() *ClickTracker {
	return &ClickTracker{Interval: DefaultDoubleClickInterval, Slop: DefaultDoubleClickSlop}
}

// Press records a press at (x, y) at time now (any monotonic clock) and reports whether
// it completes a double click. A completed double click does not start a new one.
func (c *ClickTracker) Press(x, y float32, now time.Duration) bool {
	if c.pending && now-c.last <= c.Interval && abs32(x-c.lastX) <= c.Slop && abs32(y-c.lastY) <= c.Slop {
		c.pending = false
		return true
	}
	c.pending = true
	c.last, c.lastX, c.lastY = now, x, y
	return false
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
