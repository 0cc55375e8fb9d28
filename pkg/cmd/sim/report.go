package sim

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/utils/laptime"
)

type LapRecord struct {
	Lap      int
	Time     time.Duration
	Sectors  []time.Duration // checkpoint sectors followed by the leg to the finish
	Improved bool
}

// Report collects the outcome of a simulation from its race events
type Report struct {
	mu       sync.Mutex
	Track    string
	Ticks    int
	Attempts int
	Laps     []LapRecord
	Bounces  map[model.BounceCause]int
	current  []time.Duration
}

func NewReport(trackName string) *Report {
	return &Report{Track: trackName, Bounces: map[model.BounceCause]int{}}
}

// Handle implements session.Handler
func (r *Report) Handle(_ context.Context, e model.RaceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch e.Type {
	case model.EventAttempt:
		r.Attempts++
		r.current = nil
	case model.EventCheckpoint:
		r.current = append(r.current, e.Duration)
	case model.EventLap:
		sectors := append(r.current, e.Duration-lo.Sum(r.current))
		r.Laps = append(r.Laps, LapRecord{
			Lap:      e.Lap,
			Time:     e.Duration,
			Sectors:  sectors,
			Improved: e.Improved,
		})
		r.current = nil
	case model.EventBounce:
		r.Bounces[e.Cause]++
	}
}

// BestLap returns the fastest lap time
func (r *Report) BestLap() omit.Val[time.Duration] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Laps) == 0 {
		return omit.Val[time.Duration]{}
	}
	best := lo.MinBy(r.Laps, func(a, b LapRecord) bool { return a.Time < b.Time })
	return omit.From(best.Time)
}

func (r *Report) WriteText(w io.Writer) error {
	best := r.BestLap()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := fmt.Fprintf(w, "Track: %s  Ticks: %d  Attempts: %d\n",
		r.Track, r.Ticks, r.Attempts); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	sectors := lo.Max(lo.Map(r.Laps, func(l LapRecord, _ int) int { return len(l.Sectors) }))
	header := []string{"LAP", "TIME"}
	for i := range sectors {
		header = append(header, fmt.Sprintf("S%d", i+1))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, l := range r.Laps {
		row := []string{fmt.Sprint(l.Lap), laptime.Format(l.Time)}
		row = append(row, lo.Map(l.Sectors, func(d time.Duration, _ int) string {
			return laptime.Format(d)
		})...)
		if l.Improved {
			row = append(row, "*")
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if d, ok := best.Get(); ok {
		fmt.Fprintf(w, "Best lap: %s\n", laptime.Format(d))
	} else {
		fmt.Fprintln(w, "Best lap: -")
	}
	_, err := fmt.Fprintf(w, "Bounces: off-track %d, wall %d\n",
		r.Bounces[model.BounceOffTrack], r.Bounces[model.BounceWall])
	return err
}

func (r *Report) WriteJSON(w io.Writer) error {
	best := r.BestLap()
	r.mu.Lock()
	defer r.mu.Unlock()
	seconds := func(d time.Duration) float64 {
		return laptime.Seconds(d).InexactFloat64()
	}
	doc := map[string]any{
		"track":    r.Track,
		"ticks":    r.Ticks,
		"attempts": r.Attempts,
		"laps": lo.Map(r.Laps, func(l LapRecord, _ int) map[string]any {
			return map[string]any{
				"lap":      l.Lap,
				"time":     seconds(l.Time),
				"sectors":  lo.Map(l.Sectors, func(d time.Duration, _ int) float64 { return seconds(d) }),
				"improved": l.Improved,
			}
		}),
		"bounces": map[string]any{
			model.BounceOffTrack.String(): r.Bounces[model.BounceOffTrack],
			model.BounceWall.String():     r.Bounces[model.BounceWall],
		},
	}
	if d, ok := best.Get(); ok {
		doc["best"] = seconds(d)
	}
	_, err := fmt.Fprintln(w, oj.JSON(doc, &oj.Options{Sort: true}))
	return err
}
