package alert

import (
	"bytes"
	"testing"
	"time"
)

type recordingAlerter struct {
	calls []float64
}

func (r *recordingAlerter) Alert(distanceCM float64) {
	r.calls = append(r.calls, distanceCM)
}

func TestBeeper_WritesBell(t *testing.T) {
	var buf bytes.Buffer
	b := NewBeeper(&buf)

	b.Alert(12.5)

	if buf.String() != "\a" {
		t.Errorf("expected bell character, got %q", buf.String())
	}
}

func TestBeeper_NilWriter(t *testing.T) {
	b := NewBeeper(nil)
	// Must not panic
	b.Alert(12.5)
}

func TestThrottled_PassesFirstAlert(t *testing.T) {
	rec := &recordingAlerter{}
	th := NewThrottled(rec, 500*time.Millisecond)

	th.Alert(10)

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(rec.calls))
	}
	if rec.calls[0] != 10 {
		t.Errorf("expected distance 10, got %f", rec.calls[0])
	}
}

func TestThrottled_DropsWithinCooldown(t *testing.T) {
	rec := &recordingAlerter{}
	th := NewThrottled(rec, 500*time.Millisecond)

	now := time.Unix(1000, 0)
	th.now = func() time.Time { return now }

	th.Alert(10)
	now = now.Add(100 * time.Millisecond)
	th.Alert(9)
	now = now.Add(100 * time.Millisecond)
	th.Alert(8)

	if len(rec.calls) != 1 {
		t.Errorf("expected alerts within cooldown to be dropped, got %d calls", len(rec.calls))
	}
}

func TestThrottled_PassesAfterCooldown(t *testing.T) {
	rec := &recordingAlerter{}
	th := NewThrottled(rec, 500*time.Millisecond)

	now := time.Unix(1000, 0)
	th.now = func() time.Time { return now }

	th.Alert(10)
	now = now.Add(501 * time.Millisecond)
	th.Alert(9)

	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(rec.calls))
	}
	if rec.calls[1] != 9 {
		t.Errorf("expected second distance 9, got %f", rec.calls[1])
	}
}

func TestThrottled_ZeroCooldown(t *testing.T) {
	rec := &recordingAlerter{}
	th := NewThrottled(rec, 0)

	now := time.Unix(1000, 0)
	th.now = func() time.Time { return now }

	th.Alert(10)
	th.Alert(9)
	th.Alert(8)

	if len(rec.calls) != 3 {
		t.Errorf("expected all alerts through with zero cooldown, got %d", len(rec.calls))
	}
}
