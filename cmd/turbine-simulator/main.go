// Package main writes a synthetic wind farm SCADA export for trying out the cleaner.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/turbineclean/internal/log"
	"github.com/chrissnell/turbineclean/internal/simulator"
	"github.com/chrissnell/turbineclean/internal/storage/csvfile"
)

func main() {
	def := simulator.DefaultConfig()

	output := flag.String("output", "-", "Output CSV path, - for stdout")
	turbines := flag.Int("turbines", def.Turbines, "Number of turbines")
	rows := flag.Int("rows", def.Rows, "Number of readings per turbine")
	start := flag.String("start", def.Start.Format(time.RFC3339), "Timestamp of the first reading (RFC3339)")
	interval := flag.Duration("interval", def.Interval, "Time between readings")
	cutIn := flag.Float64("cut-in", def.CutIn, "Cut-in wind speed (m/s)")
	rated := flag.Float64("rated", def.Rated, "Rated wind speed (m/s)")
	cutOut := flag.Float64("cut-out", def.CutOut, "Cut-out wind speed (m/s)")
	weibullK := flag.Float64("weibull-k", def.WeibullK, "Weibull shape of the farm wind speed")
	weibullLambda := flag.Float64("weibull-lambda", def.WeibullLambda, "Weibull scale of the farm wind speed (m/s)")
	faultRate := flag.Float64("fault-rate", def.FaultRate, "Probability that a reading carries a fault")
	seed := flag.Uint64("seed", def.Seed, "Random seed")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}

	cfg := def
	cfg.Turbines = *turbines
	cfg.Rows = *rows
	cfg.Start = startTime
	cfg.Interval = *interval
	cfg.CutIn = *cutIn
	cfg.Rated = *rated
	cfg.CutOut = *cutOut
	cfg.WeibullK = *weibullK
	cfg.WeibullLambda = *weibullLambda
	cfg.FaultRate = *faultRate
	cfg.Seed = *seed

	t, err := simulator.Generate(cfg)
	if err != nil {
		log.Fatalf("could not generate readings: %v", err)
	}

	out := os.Stdout
	if *output != "-" {
		out, err = os.Create(*output)
		if err != nil {
			log.Fatalf("could not create %s: %v", *output, err)
		}
		defer out.Close()
	}

	if err := csvfile.WriteTable(out, t, cfg.Turbines); err != nil {
		log.Fatalf("could not write readings: %v", err)
	}

	log.Infow("generated synthetic farm",
		"turbines", cfg.Turbines,
		"rows", cfg.Rows,
		"fault_rate", cfg.FaultRate,
		"output", *output)
}
