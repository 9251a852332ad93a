package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sorvete/bms/smfexport"
)

var exportFlags struct {
	out        string
	resolution int
	seed       int64
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.out, "output", "o", "", "output .mid path; defaults to the chart path with a .mid extension")
	exportCmd.Flags().IntVar(&exportFlags.resolution, "resolution", 240, "ticks per quarter note")
	exportCmd.Flags().Int64Var(&exportFlags.seed, "seed", -1, "seed for #RANDOM branches; negative always picks the highest")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <chart.bms>",
	Short: "Render a chart as a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(args[0])
	},
}

func runExport(path string) error {
	_, notes, timing, err := compileChart(path, exportFlags.resolution, exportFlags.seed)
	if err != nil {
		return err
	}
	s, err := smfexport.Export(notes, timing)
	if err != nil {
		return err
	}
	out := exportFlags.out
	if out == "" {
		out = strings.TrimSuffix(path, ".bms") + ".mid"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.WriteTo(f)
	return err
}
