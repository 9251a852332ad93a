// Package smfexport renders compiled BMS notes into a Standard MIDI File so
// that a chart can be auditioned in an ordinary MIDI player. Lanes map onto
// chromatic keys, background keysounds get a channel of their own and
// landmines are left out, since hitting them is not music.
package smfexport

import (
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/sorvete/bms"
	"github.com/sorvete/bms/util"
)

const (
	laneChannel = 0
	bgmChannel  = 9
	baseKey     = 36 // C2, lane 0

	normalVelocity = 100
	hiddenVelocity = 40
	bgmVelocity    = 80
)

type event struct {
	tick int
	prio int // tempo < note-off < note-on on the same tick
	msg  []byte
}

// Export lays the notes and tempo changes of a compiled chart into a
// single-track SMF whose metric resolution is the chart's resolution, so
// ticks carry over unchanged. Stops have no MIDI equivalent; every event
// after a stop is pushed back by the stop's length in ticks, which at the
// tempo then in force amounts to exactly the pause the player would hear.
func Export(notes bms.Notes, timing bms.Timing) (*smf.SMF, error) {
	if notes.Resolution < 1 || notes.Resolution > math.MaxUint16 {
		return nil, fmt.Errorf("resolution %d cannot be expressed as SMF metric ticks", notes.Resolution)
	}

	stopTicks := util.SortedKeys(timing.Stops)
	// shift maps a chart tick into the stretched tick space that makes room
	// for the stops. Events exactly on a stop's tick sound before the pause
	// and stay put.
	shift := func(tick int) int {
		shifted := tick
		for _, s := range stopTicks {
			if s >= tick {
				break
			}
			shifted += int(math.Round(timing.Stops[s] * float64(notes.Resolution)))
		}
		return shifted
	}

	var events []event
	for _, tick := range util.SortedKeys(timing.TempoChanges) {
		events = append(events, event{
			tick: shift(tick),
			prio: 0,
			msg:  smf.MetaTempo(timing.TempoChanges[tick]),
		})
	}
	for _, note := range notes.Notes {
		on := shift(note.Tick)
		switch kind := note.Kind.(type) {
		case bms.Normal:
			events = appendKeyPress(events, laneKey(note.Lane), on, on+notes.Resolution/2, normalVelocity)
		case bms.Hidden:
			events = appendKeyPress(events, laneKey(note.Lane), on, on+notes.Resolution/2, hiddenVelocity)
		case bms.Long:
			events = appendKeyPress(events, laneKey(note.Lane), on, shift(kind.EndTick), normalVelocity)
		case bms.BGM:
			key := uint8(baseKey + kind.Keysound%48)
			events = append(events,
				event{tick: on, prio: 2, msg: midi.NoteOn(bgmChannel, key, bgmVelocity)},
				event{tick: on + notes.Resolution/2, prio: 1, msg: midi.NoteOff(bgmChannel, key)},
			)
		case bms.Mine:
			// silent
		default:
			panic("unhandled note kind")
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].prio < events[j].prio
	})

	var track smf.Track
	prev := 0
	for _, e := range events {
		track.Add(uint32(e.tick-prev), e.msg)
		prev = e.tick
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(notes.Resolution)
	s.Add(track)
	return s, nil
}

func appendKeyPress(events []event, key uint8, on, off, velocity int) []event {
	return append(events,
		event{tick: on, prio: 2, msg: midi.NoteOn(laneChannel, key, uint8(velocity))},
		event{tick: off, prio: 1, msg: midi.NoteOff(laneChannel, key)},
	)
}

func laneKey(lane int) uint8 {
	key := baseKey + lane
	if key > 127 {
		key = 127
	}
	return uint8(key)
}
