package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/sorvete/bms"
	"github.com/sorvete/bms/version"
)

var rootCmd = &cobra.Command{
	Use:   "bms",
	Short: "Compile BMS charts into playable data",
	Long: `bms compiles textual BMS rhythm game charts into normalized objects,
laned notes and absolute hit times, and can render the result as YAML, JSON
or a Standard MIDI File.`,
	Version: version.VersionOrHash,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

// randomSource returns the #RANDOM resolver for a seed. A negative seed
// selects the deterministic pick-highest source, so identical inputs compile
// identically unless the caller opts in to randomness.
func randomSource(seed int64) func(int) int {
	if seed < 0 {
		return bms.DefaultRandom
	}
	r := rand.New(rand.NewSource(seed))
	return func(max int) int {
		if max < 1 { // #RANDOM 0 draws nothing, same as DefaultRandom
			return max
		}
		return r.Intn(max) + 1
	}
}

// compileChart runs the whole pipeline on a chart file.
func compileChart(path string, resolution int, seed int64) (*bms.Chart, bms.Notes, bms.Timing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bms.Notes{}, bms.Timing{}, err
	}
	chart, err := bms.Compile(string(data), resolution, randomSource(seed))
	if err != nil {
		return nil, bms.Notes{}, bms.Timing{}, fmt.Errorf("compiling %s: %w", path, err)
	}
	timing, err := bms.GenerateTiming(chart)
	if err != nil {
		return nil, bms.Notes{}, bms.Timing{}, fmt.Errorf("timing %s: %w", path, err)
	}
	notes := bms.Generate(chart)
	notes.FindSeconds(timing)
	return chart, notes, timing, nil
}
