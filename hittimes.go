package bms

import (
	"sort"

	"github.com/sorvete/bms/util"
)

// HitTime is the absolute second a note must be hit and, for long notes,
// released. Recomputing it from the same chart and timing always gives the
// same result.
type HitTime struct {
	Hit        float64
	Release    float64
	HasRelease bool
}

// Event classes in tie-break order: notes on the exact tick of a tempo change
// are timed with the old tempo, and a stop on that tick pauses at the new one.
const (
	eventHit = iota // both hits and long-note releases
	eventTempo
	eventPause
)

type sweepEvent struct {
	tick    int
	class   int
	index   int // note index, eventHit only
	release bool
	value   float64 // new tempo or pause length in quarter notes
}

// FindSeconds fills n.HitTimes with one entry per note. It assumes timing
// came from GenerateTiming: there is a tempo change at tick 0 and every value
// is usable. With no notes it returns immediately and HitTimes stays nil.
//
// The sweep walks one merged, tick-ordered event list. Hits and releases just
// read the running clock; a tempo change folds the elapsed stretch into the
// clock and swaps the quarter-note duration; a pause folds in the elapsed
// stretch plus the pause, leaving the tempo alone.
func (n *Notes) FindSeconds(timing Timing) {
	if len(n.Notes) == 0 {
		return
	}
	events := make([]sweepEvent, 0, len(n.Notes)+len(timing.TempoChanges)+len(timing.Stops))
	for i, note := range n.Notes {
		events = append(events, sweepEvent{tick: note.Tick, class: eventHit, index: i})
		if long, ok := note.Kind.(Long); ok {
			events = append(events, sweepEvent{tick: long.EndTick, class: eventHit, index: i, release: true})
		}
	}
	for _, tick := range util.SortedKeys(timing.TempoChanges) {
		if tick == 0 {
			continue // the starting condition, not an event
		}
		events = append(events, sweepEvent{tick: tick, class: eventTempo, value: timing.TempoChanges[tick]})
	}
	for _, tick := range util.SortedKeys(timing.Stops) {
		events = append(events, sweepEvent{tick: tick, class: eventPause, value: timing.Stops[tick]})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].class < events[j].class
	})

	hitTimes := make([]HitTime, len(n.Notes))
	quarterNote := 60 / timing.TempoChanges[0] // seconds per quarter note
	offsetTick := 0
	offsetSeconds := 0.0
	for _, e := range events {
		elapsed := quarterNote * float64(e.tick-offsetTick) / float64(n.Resolution)
		switch e.class {
		case eventHit:
			if e.release {
				hitTimes[e.index].Release = offsetSeconds + elapsed
				hitTimes[e.index].HasRelease = true
			} else {
				hitTimes[e.index].Hit = offsetSeconds + elapsed
			}
		case eventTempo:
			offsetSeconds += elapsed
			offsetTick = e.tick
			quarterNote = 60 / e.value
		case eventPause:
			offsetSeconds += elapsed + quarterNote*e.value
			offsetTick = e.tick
		default:
			panic("unknown sweep event class")
		}
	}
	n.HitTimes = hitTimes
}
