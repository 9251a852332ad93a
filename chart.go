package bms

import "strings"

type (
	// Chart is the compiled in-memory form of a BMS source text. One call to
	// Compile produces it whole; nothing mutates it afterwards, so it can be
	// shared freely between the note generator, the timing extractor and the
	// keysound table.
	Chart struct {
		// Resolution is the number of ticks per quarter note. Every tick in
		// the chart, including the barlines, is expressed in it.
		Resolution int

		Headers Headers

		// Objects is sorted and deduplicated; see Objects.SortAndDedup.
		Objects Objects

		// Barlines holds the starting tick of every measure from 0 up to the
		// last measure with content. Renderers draw these; the compiler keeps
		// them because only it knows the measure widths.
		Barlines []int `yaml:",flow"`

		// TimeSignatures maps a measure index to its length multiplier. The
		// map is sparse; measures without an entry are 1.0, i.e. 4 quarter
		// notes wide.
		TimeSignatures map[int]float64
	}

	// Headers holds the chart's header lines. BMS header names are case
	// insensitive ("BPM", "bpm" and "Bpm" are one key), so keys are stored
	// lowercased and all access goes through Get and Set.
	Headers map[string]string
)

func (h Headers) Set(name, value string) {
	h[strings.ToLower(name)] = value
}

func (h Headers) Get(name string) (string, bool) {
	value, ok := h[strings.ToLower(name)]
	return value, ok
}

// TimeSignature returns the length multiplier of a measure, 1.0 when the
// chart does not override it.
func (c *Chart) TimeSignature(measure int) float64 {
	if multiplier, ok := c.TimeSignatures[measure]; ok {
		return multiplier
	}
	return 1.0
}
