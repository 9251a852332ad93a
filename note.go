package bms

import (
	"sort"
	"strconv"
)

type (
	// NoteKind tells what hitting (or not hitting) a note means. The set is
	// closed: Normal, Hidden, Long, BGM and Mine. Code switching on a kind
	// should panic on anything else rather than guess.
	NoteKind interface {
		noteKind()
	}

	// Normal is a judgeable note triggering a keysound.
	Normal struct {
		Keysound int
	}

	// Hidden occupies a lane but is never judged; it only carries a keysound.
	Hidden struct {
		Keysound int
	}

	// Long is held from the note's tick until EndTick.
	Long struct {
		Keysound int
		EndTick  int
	}

	// BGM plays its keysound unconditionally and has no lane.
	BGM struct {
		Keysound int
	}

	// Mine damages the player when hit instead of playing a sound.
	Mine struct {
		Damage int
	}

	// Note is one object the player, or the background, interacts with.
	Note struct {
		Tick int
		Lane int
		Kind NoteKind
	}

	// Notes is the playable form of a chart: the laned note list plus the
	// resolution it was compiled at, which FindSeconds needs to turn ticks
	// into quarter notes. HitTimes stays nil until FindSeconds has run.
	Notes struct {
		Notes      []Note
		Resolution int
		HitTimes   []HitTime
	}
)

func (Normal) noteKind() {}
func (Hidden) noteKind() {}
func (Long) noteKind()   {}
func (BGM) noteKind()    {}
func (Mine) noteKind()   {}

type channelRange struct{ lo, hi int }

func (r channelRange) contains(channel int) bool { return channel >= r.lo && channel <= r.hi }
func (r channelRange) width() int                { return r.hi - r.lo + 1 }

// Note channels come in player-1/player-2 pairs occupying disjoint spans of
// the base-36 channel space. Landmines sit far away from the rest because
// their channels start with a letter.
var (
	bgmChannels       = channelRange{ChannelBGM, ChannelBGM}
	visibleP1         = channelRange{37, 71}   // 11..1Z
	visibleP2         = channelRange{73, 107}  // 21..2Z
	invisibleP1       = channelRange{109, 143} // 31..3Z
	invisibleP2       = channelRange{145, 179} // 41..4Z
	longP1            = channelRange{181, 215} // 51..5Z
	longP2            = channelRange{217, 251} // 61..6Z
	mineP1            = channelRange{469, 477} // D1..D9
	mineP2            = channelRange{505, 513} // E1..E9
	noteChannelRanges = []channelRange{
		bgmChannels,
		visibleP1, visibleP2,
		invisibleP1, invisibleP2,
		longP1, longP2,
		mineP1, mineP2,
	}
)

// lane numbers a channel within its player-1/player-2 range pair; player 2
// continues where player 1 ends, so both players' notes share one lane space
// without colliding.
func lane(channel int, p1, p2 channelRange) int {
	if p1.contains(channel) {
		return channel - p1.lo
	}
	return channel - p2.lo + p1.width()
}

// Generate classifies a chart's objects into laned notes. It never fails:
// objects on channels it does not recognize are left out, so charts using
// newer extensions still play.
//
// Long notes come from two mutually exclusive strategies. Objects on a
// dedicated long-note channel pair up with the next same-channel same-value
// object; without one the note is dropped entirely. Independently, when the
// LNOBJ header names a marker value, a visible note is extended to the next
// same-channel object carrying the marker, the marker object itself never
// becoming a note. A visible note that finds no marker stays Normal.
func Generate(chart *Chart) Notes {
	objects := noteObjects(chart.Objects)
	lnobj, haveLNObj := lnobjValue(chart.Headers)
	var notes []Note
	for i, obj := range objects {
		switch {
		case bgmChannels.contains(obj.Channel):
			notes = append(notes, Note{Tick: obj.Tick, Kind: BGM{Keysound: obj.Value}})
		case visibleP1.contains(obj.Channel) || visibleP2.contains(obj.Channel):
			if haveLNObj && obj.Value == lnobj {
				continue // the marker terminates an earlier note, it is not one itself
			}
			kind := NoteKind(Normal{Keysound: obj.Value})
			if haveLNObj {
				if end, ok := nextMatch(objects, i, func(o Object) bool {
					return o.Channel == obj.Channel && o.Value == lnobj
				}); ok {
					kind = Long{Keysound: obj.Value, EndTick: end.Tick}
				}
			}
			notes = append(notes, Note{Tick: obj.Tick, Lane: lane(obj.Channel, visibleP1, visibleP2), Kind: kind})
		case invisibleP1.contains(obj.Channel) || invisibleP2.contains(obj.Channel):
			notes = append(notes, Note{Tick: obj.Tick, Lane: lane(obj.Channel, invisibleP1, invisibleP2), Kind: Hidden{Keysound: obj.Value}})
		case longP1.contains(obj.Channel) || longP2.contains(obj.Channel):
			end, ok := nextMatch(objects, i, func(o Object) bool {
				return o.Channel == obj.Channel && o.Value == obj.Value
			})
			if !ok {
				continue // unterminated long note, nothing to play
			}
			notes = append(notes, Note{Tick: obj.Tick, Lane: lane(obj.Channel, longP1, longP2), Kind: Long{Keysound: obj.Value, EndTick: end.Tick}})
		case mineP1.contains(obj.Channel) || mineP2.contains(obj.Channel):
			// The reference command memo halves the value to get the damage;
			// the division truncates.
			notes = append(notes, Note{Tick: obj.Tick, Lane: lane(obj.Channel, mineP1, mineP2), Kind: Mine{Damage: obj.Value / 2}})
		default:
			panic("noteObjects let through an unknown channel")
		}
	}
	return Notes{Notes: notes, Resolution: chart.Resolution}
}

// noteObjects keeps only the objects living on note channels, preserving the
// chart's sorted order.
func noteObjects(objects Objects) []Object {
	var out []Object
	for _, o := range objects {
		for _, r := range noteChannelRanges {
			if r.contains(o.Channel) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// lnobjValue decodes the LNOBJ header as a base-36 value. A missing or
// malformed header simply disables the marker strategy.
func lnobjValue(headers Headers) (int, bool) {
	raw, ok := headers.Get("LNOBJ")
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 36, 0)
	if err != nil {
		return 0, false
	}
	return int(value), true
}

// nextMatch finds the first object strictly after objects[i]'s tick for which
// match returns true. The slice is sorted by tick, so the scan binary-searches
// to the strictly later suffix and walks forward from there; objects sharing
// the start's tick can never pair.
func nextMatch(objects []Object, i int, match func(Object) bool) (Object, bool) {
	start := objects[i].Tick
	j := sort.Search(len(objects), func(k int) bool { return objects[k].Tick > start })
	for ; j < len(objects); j++ {
		if match(objects[j]) {
			return objects[j], true
		}
	}
	return Object{}, false
}
