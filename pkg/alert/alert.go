// Package alert raises the audible proximity alert. The distance estimator
// only decides; this package performs the side effect, throttled so a hand
// held close does not produce a continuous tone.
package alert

import (
	"io"
	"sync"
	"time"

	"github.com/jmakovec/camsight/pkg/logging"
)

// Alerter raises a proximity alert for an object at the given distance.
type Alerter interface {
	Alert(distanceCM float64)
}

// Beeper writes the terminal bell character to a writer. It is the portable
// stand-in for a tone generator; the tty decides what a bell sounds like.
type Beeper struct {
	W io.Writer
}

// NewBeeper creates a Beeper writing to w.
func NewBeeper(w io.Writer) *Beeper {
	return &Beeper{W: w}
}

// Alert logs the proximity event and rings the bell.
func (b *Beeper) Alert(distanceCM float64) {
	logging.Component("alert").Infof("Object detected at %.2f cm. Proximity alert!", distanceCM)
	if b.W != nil {
		if _, err := b.W.Write([]byte("\a")); err != nil {
			logging.Component("alert").WithError(err).Error("Could not ring bell")
		}
	}
}

// Throttled wraps an Alerter with a cooldown so repeated alerts within the
// cooldown window are dropped.
type Throttled struct {
	inner    Alerter
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewThrottled creates a Throttled alerter. A cooldown of zero disables
// throttling.
func NewThrottled(inner Alerter, cooldown time.Duration) *Throttled {
	return &Throttled{
		inner:    inner,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Alert forwards to the wrapped Alerter unless the cooldown has not elapsed.
func (t *Throttled) Alert(distanceCM float64) {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.cooldown {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.inner.Alert(distanceCM)
}
