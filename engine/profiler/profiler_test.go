package profiler

import (
	"testing"
	"time"
)

func TestTickReportsAfterInterval(t *testing.T) {
	clock := time.Unix(1000, 0)
	p := NewProfiler()
	p.now = func() time.Time { return clock }
	p.lastTime = clock

	outcomes := []FrameOutcome{OutcomePresented, OutcomePresented, OutcomeLost, OutcomeSkipped}
	for _, o := range outcomes {
		clock = clock.Add(100 * time.Millisecond)
		if _, reported := p.Tick(o); reported {
			t.Fatal("reported before the interval elapsed")
		}
	}

	clock = clock.Add(600 * time.Millisecond)
	stats, reported := p.Tick(OutcomePresented)
	if !reported {
		t.Fatal("expected a report after one second")
	}
	if stats.Presented != 3 || stats.Lost != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.FPS != 3 {
		t.Fatalf("fps = %v, want 3", stats.FPS)
	}

	clock = clock.Add(time.Second)
	stats, _ = p.Tick(OutcomeSkipped)
	if stats.Presented != 0 || stats.Skipped != 1 {
		t.Fatalf("counters not reset: %+v", stats)
	}
}
