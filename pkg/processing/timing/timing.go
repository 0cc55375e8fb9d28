package timing

import (
	"slices"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"

	"github.com/mpapenbr/tankrace/pkg/model"
)

// Tracker keeps the sector and lap times of a session.
// Bests survive Start, everything else is reset.
type Tracker struct {
	lapStart      time.Time
	sectorStart   time.Time
	sectors       []time.Duration
	bestSectors   []time.Duration
	lastLap       omit.Val[time.Duration]
	bestLap       omit.Val[time.Duration]
	sectorFlash   model.Flash
	lapFlash      model.Flash
	flashDuration time.Duration
}

type TrackerOption func(t *Tracker)

// WithFlashDuration sets how long improved/not improved signals stay active
func WithFlashDuration(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.flashDuration = d
	}
}

func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		sectors:       make([]time.Duration, 0),
		bestSectors:   make([]time.Duration, 0),
		flashDuration: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins a new attempt at now
func (t *Tracker) Start(now time.Time) {
	t.lapStart = now
	t.sectorStart = now
	t.sectors = t.sectors[:0]
	t.sectorFlash = model.Flash{}
	t.lapFlash = model.Flash{}
}

// Sector records the sector that ended at now and returns its duration and
// whether it is a new best for its index.
func (t *Tracker) Sector(now time.Time) (d time.Duration, improved bool) {
	d = now.Sub(t.sectorStart)
	idx := len(t.sectors)
	t.sectors = append(t.sectors, d)
	switch {
	case idx >= len(t.bestSectors):
		t.bestSectors = append(t.bestSectors, d)
		improved = true
	case d < t.bestSectors[idx]:
		t.bestSectors[idx] = d
		improved = true
	}
	t.sectorStart = now
	t.sectorFlash = model.Flash{Index: idx, Improved: improved, Until: now.Add(t.flashDuration)}
	return d, improved
}

// Lap records the lap that ended at now and starts the next one
func (t *Tracker) Lap(now time.Time) (d time.Duration, improved bool) {
	d = now.Sub(t.lapStart)
	t.lastLap = omit.From(d)
	if best, ok := t.bestLap.Get(); !ok || d < best {
		t.bestLap = omit.From(d)
		improved = true
	}
	t.sectors = t.sectors[:0]
	t.lapStart = now
	t.sectorStart = now
	t.lapFlash = model.Flash{Index: -1, Improved: improved, Until: now.Add(t.flashDuration)}
	return d, improved
}

func (t *Tracker) LastLap() omit.Val[time.Duration] { return t.lastLap }
func (t *Tracker) BestLap() omit.Val[time.Duration] { return t.bestLap }

// Sectors returns a copy of the sector times of the running lap
func (t *Tracker) Sectors() []time.Duration { return slices.Clone(t.sectors) }

// BestSectors returns a copy of the best sector times
func (t *Tracker) BestSectors() []time.Duration { return slices.Clone(t.bestSectors) }

// TheoreticalBest is the sum of the best sectors. It is only set once every
// sector of n has a best time.
func (t *Tracker) TheoreticalBest(n int) omit.Val[time.Duration] {
	if n == 0 || len(t.bestSectors) < n {
		return omit.Val[time.Duration]{}
	}
	return omit.From(lo.Sum(t.bestSectors[:n]))
}

// Fill copies the timing state into s
func (t *Tracker) Fill(s *model.Snapshot, now time.Time) {
	s.LapTime = now.Sub(t.lapStart)
	s.SectorTime = now.Sub(t.sectorStart)
	s.LastLap = t.lastLap
	s.BestLap = t.bestLap
	s.Sectors = t.Sectors()
	s.BestSectors = t.BestSectors()
	s.SectorFlash = t.sectorFlash
	s.LapFlash = t.lapFlash
}
