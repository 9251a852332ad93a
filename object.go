package bms

import "sort"

type (
	// Object is a single positioned value in a chart: which stream it belongs
	// to (Channel), where it sits in the song (Tick) and the payload decoded
	// from the grid (Value). What the value means depends on the channel: a
	// keysound id, an inline tempo, a stop id and so on.
	Object struct {
		Channel int
		Tick    int
		Value   int
	}

	// Objects is a chart's object stream. The note generator and the timing
	// extractor both assume it is sorted and deduplicated, so every mutation
	// has to go through SortAndDedup before the chart is handed onwards.
	Objects []Object
)

// Less orders objects by tick, breaking ties by channel and then value.
func (o Object) Less(other Object) bool {
	if o.Tick != other.Tick {
		return o.Tick < other.Tick
	}
	if o.Channel != other.Channel {
		return o.Channel < other.Channel
	}
	return o.Value < other.Value
}

// Equal reports whether two objects occupy the same slot. The value does not
// take part: two objects on the same channel and tick with different values
// still count as duplicates of each other.
func (o Object) Equal(other Object) bool {
	return o.Channel == other.Channel && o.Tick == other.Tick
}

// SortAndDedup sorts the objects and drops all but the first of every group
// occupying the same (channel, tick) slot. Objects on the BGM channel are
// exempt: a measure may layer any number of background keysounds on one tick,
// including identical ones. Applying it to an already normalized stream
// changes nothing.
func (s *Objects) SortAndDedup() {
	objs := *s
	sort.Slice(objs, func(i, j int) bool { return objs[i].Less(objs[j]) })
	out := objs[:0]
	for _, o := range objs {
		if len(out) > 0 && o.Channel != ChannelBGM && o.Equal(out[len(out)-1]) {
			continue
		}
		out = append(out, o)
	}
	*s = out
}
