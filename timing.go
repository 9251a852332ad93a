package bms

import (
	"math"
	"strconv"
	"strings"
)

// Channels with a fixed timing meaning. The two-letter ones decode from
// base-36 like every other channel id.
const (
	ChannelBGM         = 1    // 01, background keysounds
	ChannelTempoInline = 3    // 03, tempo as an inline base-16 value
	ChannelTempo       = 8    // 08, tempo by BPMxx id
	ChannelStop        = 9    // 09, pause by STOPxx id
	ChannelScroll      = 1020 // SC, scroll rate by SCROLLxx id
	ChannelSpeed       = 1033 // SP, speed by SPEEDxx id
)

// Timing holds everything that maps chart ticks to real time and scroll
// behavior. Exactly one tempo is in force at any tick; TempoChanges always
// has an entry at tick 0 carrying the initial tempo.
type Timing struct {
	TempoChanges map[int]float64

	// Stops maps a tick to a pause length in quarter notes. The chart stores
	// pauses in 192nds of a measure; GenerateTiming converts on the way in.
	Stops map[int]float64

	ScrollChanges map[int]float64
	SpeedChanges  map[int]float64
}

// GenerateTiming extracts the timing maps from a compiled chart. The BPMxx,
// STOPxx, SCROLLxx and SPEEDxx header groups are collected into id→value
// tables, then objects on the fixed timing channels project those tables onto
// ticks. Objects referencing ids the chart never defines are skipped.
//
// It fails when any value in those header groups does not parse, or when the
// chart ends up with no determinable tempo at tick 0: such a chart cannot be
// timed at all, and no partial Timing is returned.
func GenerateTiming(chart *Chart) (Timing, error) {
	bpmIDs, err := headerGroup(chart.Headers, "bpm")
	if err != nil {
		return Timing{}, err
	}
	stopIDs, err := headerGroup(chart.Headers, "stop")
	if err != nil {
		return Timing{}, err
	}
	scrollIDs, err := headerGroup(chart.Headers, "scroll")
	if err != nil {
		return Timing{}, err
	}
	speedIDs, err := headerGroup(chart.Headers, "speed")
	if err != nil {
		return Timing{}, err
	}
	t := Timing{
		TempoChanges:  make(map[int]float64),
		Stops:         make(map[int]float64),
		ScrollChanges: make(map[int]float64),
		SpeedChanges:  make(map[int]float64),
	}
	for _, obj := range chart.Objects {
		switch obj.Channel {
		case ChannelTempoInline:
			// The grid pair was already decoded as base-16, so the value is
			// the tempo itself.
			t.TempoChanges[obj.Tick] = float64(obj.Value)
		case ChannelTempo:
			if bpm, ok := bpmIDs[obj.Value]; ok {
				t.TempoChanges[obj.Tick] = bpm
			}
		case ChannelStop:
			if duration, ok := stopIDs[obj.Value]; ok {
				t.Stops[obj.Tick] = duration / 192 * 4
			}
		case ChannelScroll:
			if rate, ok := scrollIDs[obj.Value]; ok {
				t.ScrollChanges[obj.Tick] = rate
			}
		case ChannelSpeed:
			if rate, ok := speedIDs[obj.Value]; ok {
				t.SpeedChanges[obj.Tick] = rate
			}
		}
	}
	if _, ok := t.TempoChanges[0]; !ok {
		raw, ok := chart.Headers.Get("BPM")
		if !ok {
			return Timing{}, &ParseError{Reason: "chart has no initial BPM"}
		}
		bpm, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(bpm) {
			return Timing{}, &ParseError{Reason: "invalid BPM header value " + strconv.Quote(raw)}
		}
		t.TempoChanges[0] = bpm
	}
	return t, nil
}

// headerGroup collects headers of the form <prefix><id>, id being two base-36
// characters, into an id→value map. Ids that do not decode are skipped;
// values that do not parse, or parse to NaN, abort the caller.
func headerGroup(headers Headers, prefix string) (map[int]float64, error) {
	out := make(map[int]float64)
	for key, raw := range headers {
		suffix, found := strings.CutPrefix(key, prefix)
		if !found || len(suffix) != 2 {
			continue
		}
		id, err := strconv.ParseInt(suffix, 36, 0)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) {
			return nil, &ParseError{Reason: "invalid " + strings.ToUpper(key) + " header value " + strconv.Quote(raw)}
		}
		out[int(id)] = value
	}
	return out, nil
}
