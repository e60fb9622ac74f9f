package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// FrameOutcome classifies a frame for the profiler counters.
type FrameOutcome int

const (
	// OutcomePresented counts a frame that reached the display.
	OutcomePresented FrameOutcome = iota

	// OutcomeLost counts a frame dropped because the surface had to be reconfigured.
	OutcomeLost

	// OutcomeSkipped counts a frame that was not presented for any other reason.
	OutcomeSkipped
)

// Stats is one reporting window of profiler data.
type Stats struct {
	FPS       float64
	Presented int
	Lost      int
	Skipped   int
	HeapMB    float64
	NumGC     uint32
}

// Profiler tracks presented frame rate, surface loss and skipped frames.
// Frames are only drawn on demand, so FPS reports redraw throughput rather than a display rate.
type Profiler struct {
	presented      int
	lost           int
	skipped        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	now            func() time.Time
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per RenderFrame with that frame's outcome.
// Logs statistics when the update interval has elapsed since the last report.
//
// Parameters:
//   - outcome: how the frame ended
//
// Returns:
//   - Stats: the reported statistics, valid only when the second return is true
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick(outcome FrameOutcome) (Stats, bool) {
	switch outcome {
	case OutcomePresented:
		p.presented++
	case OutcomeLost:
		p.lost++
	default:
		p.skipped++
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		FPS:       float64(p.presented) / elapsed.Seconds(),
		Presented: p.presented,
		Lost:      p.lost,
		Skipped:   p.skipped,
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		NumGC:     p.memStats.NumGC,
	}

	common.Logger().Info("profiler",
		"fps", stats.FPS,
		"presented", stats.Presented,
		"lost", stats.Lost,
		"skipped", stats.Skipped,
		"heap_mb", stats.HeapMB,
		"gc", stats.NumGC,
	)

	p.presented = 0
	p.lost = 0
	p.skipped = 0
	p.lastTime = currentTime
	return stats, true
}
