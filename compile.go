package bms

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	randomRegex        = regexp.MustCompile(`^#RANDOM\s+(\d+)$`)
	endRandomRegex     = regexp.MustCompile(`^#ENDRANDOM$`)
	ifRegex            = regexp.MustCompile(`^#IF\s+(\d+)$`)
	endIfRegex         = regexp.MustCompile(`^#ENDIF$`)
	timeSignatureRegex = regexp.MustCompile(`^#(\d{3})02:(\S*)$`)
	gridRegex          = regexp.MustCompile(`^#(?:EXT\s+#)?(\d{3})([0-9a-zA-Z]{2}):([0-9a-zA-Z]*)$`)
	headerRegex        = regexp.MustCompile(`^#(\w+)(?:\s+(\S.*))?$`)
)

// condState is the conditional compilation state threaded through the line
// scan: the values drawn so far by #RANDOM, and per open #IF whether chart
// lines are currently being skipped.
type condState struct {
	randomStack []int
	skipStack   []bool
}

func (c *condState) skipping() bool {
	return len(c.skipStack) > 0 && c.skipStack[len(c.skipStack)-1]
}

// gridObject is an object as it appears on a grid line, positioned by measure
// and fraction of the measure; resolvePositions flattens these to ticks.
type gridObject struct {
	channel  int
	measure  int
	fraction float64
	value    int
}

// DefaultRandom is a stand-in random source for callers that want
// reproducible compiles without seeding anything: it always picks the highest
// branch.
func DefaultRandom(max int) int { return max }

// Compile parses BMS chart text into a Chart. resolution is the number of
// ticks per quarter note used when flattening measure-relative positions to
// absolute ticks.
//
// rng resolves #RANDOM directives and must return a value in the inclusive
// range [1, max]. It is injected so that conditional compilation can be made
// reproducible; DefaultRandom works when randomness is not wanted.
//
// A line is, in priority order, a control directive, a time signature, a grid
// line, or a header. Control directives are evaluated even inside a skipped
// #IF branch; the other kinds only when not skipping. Lines matching nothing
// are ignored, as newer charts carry commands this compiler does not know.
func Compile(data string, resolution int, rng func(max int) int) (*Chart, error) {
	chart := &Chart{
		Resolution:     resolution,
		Headers:        make(Headers),
		TimeSignatures: make(map[int]float64),
	}
	var state condState
	var grid []gridObject
	for num, line := range strings.Split(data, "\n") {
		lineNo := num + 1
		line = strings.TrimSpace(line)
		matched := true
		switch {
		case randomRegex.MatchString(line):
			m := randomRegex.FindStringSubmatch(line)
			max, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, parseErrorf(lineNo, "invalid RANDOM value %q", m[1])
			}
			state.randomStack = append(state.randomStack, rng(max))
		case endRandomRegex.MatchString(line):
			if n := len(state.randomStack); n > 0 {
				state.randomStack = state.randomStack[:n-1]
			}
		case ifRegex.MatchString(line):
			m := ifRegex.FindStringSubmatch(line)
			value, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, parseErrorf(lineNo, "invalid IF value %q", m[1])
			}
			if len(state.randomStack) == 0 {
				return nil, parseErrorf(lineNo, "IF without an enclosing RANDOM")
			}
			top := state.randomStack[len(state.randomStack)-1]
			state.skipStack = append(state.skipStack, top != value)
		case endIfRegex.MatchString(line):
			if n := len(state.skipStack); n > 0 {
				state.skipStack = state.skipStack[:n-1]
			}
		default:
			matched = false
		}
		if matched || state.skipping() {
			continue
		}
		if m := timeSignatureRegex.FindStringSubmatch(line); m != nil {
			measure, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, parseErrorf(lineNo, "invalid measure number %q", m[1])
			}
			multiplier, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, parseErrorf(lineNo, "invalid time signature %q", m[2])
			}
			chart.TimeSignatures[measure] = multiplier
		} else if m := gridRegex.FindStringSubmatch(line); m != nil {
			objects, err := decodeGridLine(m[1], m[2], m[3], lineNo)
			if err != nil {
				return nil, err
			}
			grid = append(grid, objects...)
		} else if m := headerRegex.FindStringSubmatch(line); m != nil {
			chart.Headers.Set(m[1], m[2])
		}
	}
	chart.resolvePositions(grid)
	chart.Objects.SortAndDedup()
	return chart, nil
}

// decodeGridLine decodes the character pairs of one grid line into
// measure-relative objects. Pair i of n sits at fraction i/n of the measure.
// Pairs are base-36, except on the inline tempo channel where they are
// base-16. Zero pairs mean "empty" and are dropped.
func decodeGridLine(measureStr, channelStr, values string, lineNo int) ([]gridObject, error) {
	measure, err := strconv.Atoi(measureStr)
	if err != nil {
		return nil, parseErrorf(lineNo, "invalid measure number %q", measureStr)
	}
	channel64, err := strconv.ParseInt(channelStr, 36, 0)
	if err != nil {
		return nil, parseErrorf(lineNo, "invalid channel %q", channelStr)
	}
	channel := int(channel64)
	base := 36
	if channel == ChannelTempoInline {
		base = 16
	}
	var objects []gridObject
	n := len(values) / 2
	for i := 0; i < n; i++ {
		pair := values[i*2 : i*2+2]
		value, err := strconv.ParseInt(pair, base, 0)
		if err != nil {
			return nil, parseErrorf(lineNo, "invalid object value %q", pair)
		}
		if value == 0 {
			continue
		}
		objects = append(objects, gridObject{
			channel:  channel,
			measure:  measure,
			fraction: float64(i) / float64(n),
			value:    int(value),
		})
	}
	return objects, nil
}

// resolvePositions flattens measure-relative grid objects into absolute ticks
// and records each measure's starting tick as a barline. A measure is
// round(timeSignature * 4 * resolution) ticks wide; measures with no objects
// still take up their full width.
func (c *Chart) resolvePositions(grid []gridObject) {
	if len(grid) == 0 {
		return
	}
	sort.SliceStable(grid, func(i, j int) bool {
		if grid[i].measure != grid[j].measure {
			return grid[i].measure < grid[j].measure
		}
		return grid[i].fraction < grid[j].fraction
	})
	maxMeasure := grid[len(grid)-1].measure
	ticks := 0
	next := 0
	for measure := 0; measure <= maxMeasure; measure++ {
		c.Barlines = append(c.Barlines, ticks)
		width := int(math.Round(c.TimeSignature(measure) * 4 * float64(c.Resolution)))
		for ; next < len(grid) && grid[next].measure == measure; next++ {
			g := grid[next]
			c.Objects = append(c.Objects, Object{
				Channel: g.channel,
				Tick:    ticks + int(math.Round(g.fraction*float64(width))),
				Value:   g.value,
			})
		}
		ticks += width
	}
}
