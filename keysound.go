package bms

import (
	"strconv"
	"strings"
)

// Keysounds builds the keysound id→filename table from a chart's WAVxx
// headers in a single pass. Ids that do not decode as two base-36 characters
// are skipped. The table lives outside the compile pipeline; players resolve
// the Keysound field of notes through it.
func Keysounds(chart *Chart) map[int]string {
	out := make(map[int]string)
	for key, value := range chart.Headers {
		suffix, found := strings.CutPrefix(key, "wav")
		if !found || len(suffix) != 2 {
			continue
		}
		id, err := strconv.ParseInt(suffix, 36, 0)
		if err != nil {
			continue
		}
		out[int(id)] = value
	}
	return out
}
