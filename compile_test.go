package bms_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sorvete/bms"
)

func compileOrFail(t *testing.T, data string, resolution int) *bms.Chart {
	t.Helper()
	chart, err := bms.Compile(data, resolution, bms.DefaultRandom)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return chart
}

func TestCompileDeterministic(t *testing.T) {
	data := strings.Join([]string{
		"#TITLE test",
		"#BPM 130",
		"#RANDOM 4",
		"#IF 4",
		"#00011:0102",
		"#ENDIF",
		"#ENDRANDOM",
		"#00111:03",
	}, "\n")
	first := compileOrFail(t, data, 240)
	second := compileOrFail(t, data, 240)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two compiles of the same source differ. got: %v expected: %v", second, first)
	}
}

func TestConditionalCompilation(t *testing.T) {
	data := strings.Join([]string{
		"#RANDOM 2",
		"#IF 1",
		"#00011:01",
		"#ENDIF",
		"#IF 2",
		"#00012:01",
		"#ENDIF",
		"#ENDRANDOM",
	}, "\n")
	chart, err := bms.Compile(data, 240, func(max int) int { return 1 })
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	expected := bms.Objects{{Channel: 37, Tick: 0, Value: 1}} // channel 11, never 12
	if !reflect.DeepEqual(chart.Objects, expected) {
		t.Fatalf("got different objects than expected. got: %v expected: %v", chart.Objects, expected)
	}
}

func TestIfWithoutRandomFails(t *testing.T) {
	_, err := bms.Compile("#IF 1", 240, bms.DefaultRandom)
	if err == nil {
		t.Fatalf("expected an error for IF without RANDOM")
	}
	var parseErr *bms.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a ParseError, got %T: %v", err, err)
	}
}

func TestTimeSignatureTickAccounting(t *testing.T) {
	data := strings.Join([]string{
		"#00002:2.0",
		"#00011:01",
		"#00111:01",
	}, "\n")
	chart := compileOrFail(t, data, 48)
	expectedBarlines := []int{0, 384} // round(2.0 * 4 * 48)
	if !reflect.DeepEqual(chart.Barlines, expectedBarlines) {
		t.Fatalf("got different barlines than expected. got: %v expected: %v", chart.Barlines, expectedBarlines)
	}
	expected := bms.Objects{
		{Channel: 37, Tick: 0, Value: 1},
		{Channel: 37, Tick: 384, Value: 1},
	}
	if !reflect.DeepEqual(chart.Objects, expected) {
		t.Fatalf("got different objects than expected. got: %v expected: %v", chart.Objects, expected)
	}
}

func TestGridDecoding(t *testing.T) {
	// Four pairs: the zero pairs are dropped, "0Z" is base-36, fractions are
	// quarters of the measure.
	chart := compileOrFail(t, "#00011:000Z0111", 240)
	expected := bms.Objects{
		{Channel: 37, Tick: 240, Value: 35},
		{Channel: 37, Tick: 480, Value: 1},
		{Channel: 37, Tick: 720, Value: 37},
	}
	if !reflect.DeepEqual(chart.Objects, expected) {
		t.Fatalf("got different objects than expected. got: %v expected: %v", chart.Objects, expected)
	}
}

func TestInlineTempoChannelIsBase16(t *testing.T) {
	chart := compileOrFail(t, "#00003:FF", 240)
	expected := bms.Objects{{Channel: 3, Tick: 0, Value: 255}}
	if !reflect.DeepEqual(chart.Objects, expected) {
		t.Fatalf("got different objects than expected. got: %v expected: %v", chart.Objects, expected)
	}
	if _, err := bms.Compile("#00003:GG", 240, bms.DefaultRandom); err == nil {
		t.Fatalf("expected an error for a non-hex pair on the inline tempo channel")
	}
}

func TestHeadersCaseInsensitive(t *testing.T) {
	chart := compileOrFail(t, "#BpM 140", 240)
	value, ok := chart.Headers.Get("bpm")
	if !ok || value != "140" {
		t.Fatalf("got header %q, %v, expected 140, true", value, ok)
	}
	value, ok = chart.Headers.Get("BPM")
	if !ok || value != "140" {
		t.Fatalf("got header %q, %v, expected 140, true", value, ok)
	}
}

func TestUnrecognizedLinesIgnored(t *testing.T) {
	data := strings.Join([]string{
		"this is not a command",
		"#TITLE ok",
		"*---------------------- HEADER FIELD",
		"",
	}, "\n")
	chart := compileOrFail(t, data, 240)
	if title, _ := chart.Headers.Get("title"); title != "ok" {
		t.Fatalf("got title %q, expected ok", title)
	}
}

func TestSkippedBranchKeepsControlDirectives(t *testing.T) {
	// The inner RANDOM/IF pair sits in a skipped branch; its directives must
	// still pair up so the outer ENDIF is not consumed early.
	data := strings.Join([]string{
		"#RANDOM 2",
		"#IF 1",
		"#RANDOM 3",
		"#IF 1",
		"#00011:01",
		"#ENDIF",
		"#ENDRANDOM",
		"#ENDIF",
		"#ENDRANDOM",
		"#00012:02",
	}, "\n")
	chart, err := bms.Compile(data, 240, func(max int) int { return max })
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	expected := bms.Objects{
		{Channel: 38, Tick: 0, Value: 2},
	}
	if !reflect.DeepEqual(chart.Objects, expected) {
		t.Fatalf("got different objects than expected. got: %v expected: %v", chart.Objects, expected)
	}
}

func TestSkipFollowsInnermostIf(t *testing.T) {
	// Only the top of the skip stack decides: an inner IF that matches its
	// RANDOM draw compiles its branch even though the enclosing branch was
	// not taken.
	data := strings.Join([]string{
		"#RANDOM 2",
		"#IF 1",
		"#RANDOM 3",
		"#IF 3",
		"#00011:01",
		"#ENDIF",
		"#ENDRANDOM",
		"#ENDIF",
		"#ENDRANDOM",
	}, "\n")
	chart, err := bms.Compile(data, 240, func(max int) int { return max })
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	expected := bms.Objects{
		{Channel: 37, Tick: 0, Value: 1},
	}
	if !reflect.DeepEqual(chart.Objects, expected) {
		t.Fatalf("got different objects than expected. got: %v expected: %v", chart.Objects, expected)
	}
}

func TestEmptyMeasureKeepsWidth(t *testing.T) {
	// Measure 1 has no content but still spans its default four quarter notes.
	data := strings.Join([]string{
		"#00011:01",
		"#00211:01",
	}, "\n")
	chart := compileOrFail(t, data, 48)
	expectedBarlines := []int{0, 192, 384}
	if !reflect.DeepEqual(chart.Barlines, expectedBarlines) {
		t.Fatalf("got different barlines than expected. got: %v expected: %v", chart.Barlines, expectedBarlines)
	}
	if tick := chart.Objects[1].Tick; tick != 384 {
		t.Fatalf("got tick %d for the measure 2 object, expected 384", tick)
	}
}
