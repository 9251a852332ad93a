package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sorvete/bms"
)

var compileFlags struct {
	out        string
	format     string
	resolution int
	seed       int64
}

func init() {
	compileCmd.Flags().StringVarP(&compileFlags.out, "output", "o", "", "write to this file instead of standard output")
	compileCmd.Flags().StringVar(&compileFlags.format, "format", "yaml", "output format, yaml or json")
	compileCmd.Flags().IntVar(&compileFlags.resolution, "resolution", 240, "ticks per quarter note")
	compileCmd.Flags().Int64Var(&compileFlags.seed, "seed", -1, "seed for #RANDOM branches; negative always picks the highest")
	rootCmd.AddCommand(compileCmd)
}

var compileCmd = &cobra.Command{
	Use:   "compile <chart.bms>",
	Short: "Compile a chart and print its playable form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(args[0])
	},
}

// chartDoc is the document the compile command emits: chart metadata, the
// timed note list and the keysound table, everything a player frontend needs.
type chartDoc struct {
	Title      string          `yaml:",omitempty" json:"title,omitempty"`
	Artist     string          `yaml:",omitempty" json:"artist,omitempty"`
	Genre      string          `yaml:",omitempty" json:"genre,omitempty"`
	Resolution int             `json:"resolution"`
	Barlines   []int           `yaml:",flow" json:"barlines"`
	Tempos     map[int]float64 `json:"tempos"`
	Stops      map[int]float64 `yaml:",omitempty" json:"stops,omitempty"`
	Notes      []noteDoc       `json:"notes"`
	Keysounds  map[int]string  `yaml:",omitempty" json:"keysounds,omitempty"`
}

type noteDoc struct {
	Tick     int      `json:"tick"`
	Lane     int      `json:"lane"`
	Kind     string   `json:"kind"`
	Keysound int      `yaml:",omitempty" json:"keysound,omitempty"`
	Damage   int      `yaml:",omitempty" json:"damage,omitempty"`
	EndTick  int      `yaml:"endTick,omitempty" json:"endTick,omitempty"`
	Hit      float64  `json:"hit"`
	Release  *float64 `yaml:",omitempty" json:"release,omitempty"`
}

func runCompile(path string) error {
	chart, notes, timing, err := compileChart(path, compileFlags.resolution, compileFlags.seed)
	if err != nil {
		return err
	}
	doc := buildDoc(chart, notes, timing)
	var out []byte
	switch compileFlags.format {
	case "yaml":
		out, err = yaml.Marshal(doc)
	case "json":
		out, err = json.MarshalIndent(doc, "", "  ")
	default:
		return fmt.Errorf("unknown format %q", compileFlags.format)
	}
	if err != nil {
		return err
	}
	if compileFlags.out == "" {
		fmt.Print(string(out))
		return nil
	}
	return os.WriteFile(compileFlags.out, out, 0644)
}

func buildDoc(chart *bms.Chart, notes bms.Notes, timing bms.Timing) chartDoc {
	title, _ := chart.Headers.Get("TITLE")
	artist, _ := chart.Headers.Get("ARTIST")
	genre, _ := chart.Headers.Get("GENRE")
	doc := chartDoc{
		Title:      title,
		Artist:     artist,
		Genre:      genre,
		Resolution: chart.Resolution,
		Barlines:   chart.Barlines,
		Tempos:     timing.TempoChanges,
		Stops:      timing.Stops,
		Keysounds:  bms.Keysounds(chart),
	}
	for i, note := range notes.Notes {
		nd := noteDoc{Tick: note.Tick, Lane: note.Lane}
		switch kind := note.Kind.(type) {
		case bms.Normal:
			nd.Kind = "normal"
			nd.Keysound = kind.Keysound
		case bms.Hidden:
			nd.Kind = "hidden"
			nd.Keysound = kind.Keysound
		case bms.Long:
			nd.Kind = "long"
			nd.Keysound = kind.Keysound
			nd.EndTick = kind.EndTick
		case bms.BGM:
			nd.Kind = "bgm"
			nd.Keysound = kind.Keysound
		case bms.Mine:
			nd.Kind = "mine"
			nd.Damage = kind.Damage
		default:
			panic("unhandled note kind")
		}
		if notes.HitTimes != nil {
			ht := notes.HitTimes[i]
			nd.Hit = ht.Hit
			if ht.HasRelease {
				release := ht.Release
				nd.Release = &release
			}
		}
		doc.Notes = append(doc.Notes, nd)
	}
	return doc
}
