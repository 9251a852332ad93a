package main

import (
	"os"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/spf13/cobra"

	"github.com/sorvete/bms"
)

var reportFlags struct {
	templatePath string
	resolution   int
	seed         int64
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.templatePath, "template", "", "render through this template file instead of the built-in one")
	reportCmd.Flags().IntVar(&reportFlags.resolution, "resolution", 240, "ticks per quarter note")
	reportCmd.Flags().Int64Var(&reportFlags.seed, "seed", -1, "seed for #RANDOM branches; negative always picks the highest")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <chart.bms>",
	Short: "Print a summary of a chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(args[0])
	},
}

const defaultReportTemplate = `{{ .Title | default "(untitled)" }} by {{ .Artist | default "(unknown)" }}
genre:     {{ .Genre | default "-" }}
notes:     {{ .TotalNotes }} ({{ .NormalNotes }} normal, {{ .LongNotes }} long, {{ .HiddenNotes }} hidden, {{ .Mines }} mines, {{ .BGMNotes }} bgm)
keysounds: {{ .Keysounds }}
tempo:     {{ .MinBPM }}{{ if ne .MinBPM .MaxBPM }}..{{ .MaxBPM }}{{ end }} BPM{{ if .Stops }}, {{ .Stops }} stops{{ end }}
length:    {{ printf "%.1f" .Seconds }}s
`

type reportData struct {
	Title, Artist, Genre string

	TotalNotes  int
	NormalNotes int
	LongNotes   int
	HiddenNotes int
	Mines       int
	BGMNotes    int

	Keysounds      int
	MinBPM, MaxBPM float64
	Stops          int
	Seconds        float64
}

func runReport(path string) error {
	chart, notes, timing, err := compileChart(path, reportFlags.resolution, reportFlags.seed)
	if err != nil {
		return err
	}
	text := defaultReportTemplate
	if reportFlags.templatePath != "" {
		raw, err := os.ReadFile(reportFlags.templatePath)
		if err != nil {
			return err
		}
		text = string(raw)
	}
	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return err
	}
	return tmpl.Execute(os.Stdout, buildReport(chart, notes, timing))
}

func buildReport(chart *bms.Chart, notes bms.Notes, timing bms.Timing) reportData {
	data := reportData{
		Keysounds: len(bms.Keysounds(chart)),
		Stops:     len(timing.Stops),
	}
	data.Title, _ = chart.Headers.Get("TITLE")
	data.Artist, _ = chart.Headers.Get("ARTIST")
	data.Genre, _ = chart.Headers.Get("GENRE")
	for _, bpm := range timing.TempoChanges {
		if data.MinBPM == 0 || bpm < data.MinBPM {
			data.MinBPM = bpm
		}
		if bpm > data.MaxBPM {
			data.MaxBPM = bpm
		}
	}
	data.TotalNotes = len(notes.Notes)
	for _, note := range notes.Notes {
		switch note.Kind.(type) {
		case bms.Normal:
			data.NormalNotes++
		case bms.Hidden:
			data.HiddenNotes++
		case bms.Long:
			data.LongNotes++
		case bms.BGM:
			data.BGMNotes++
		case bms.Mine:
			data.Mines++
		default:
			panic("unhandled note kind")
		}
	}
	for i := range notes.HitTimes {
		ht := notes.HitTimes[i]
		if ht.Hit > data.Seconds {
			data.Seconds = ht.Hit
		}
		if ht.HasRelease && ht.Release > data.Seconds {
			data.Seconds = ht.Release
		}
	}
	return data
}
