package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chrissnell/turbineclean/internal/app"
	"github.com/chrissnell/turbineclean/internal/constants"
	"github.com/chrissnell/turbineclean/internal/log"
	"github.com/chrissnell/turbineclean/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	anomalous := flag.Bool("anomalous", false, "Keep flagged readings in the output (overrides cleaning.anomalous)")
	compare := flag.Bool("compare", false, "Also clean with the opposite anomalous setting and report both summaries")
	flag.Parse()

	if *showVersion {
		fmt.Printf("turbineclean %s\n", constants.Version)
		os.Exit(0)
	}

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config file. Did you pass the -config flag? Run with -h for help: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	err = log.InitWithFile(*debug, log.FileOptions{
		Path:       cfgData.Logging.File,
		MaxSizeMB:  cfgData.Logging.MaxSizeMB,
		MaxBackups: cfgData.Logging.MaxBackups,
		MaxAgeDays: cfgData.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	opts := app.Options{Compare: *compare}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "anomalous" {
			opts.Anomalous = anomalous
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create and run the application
	application := app.New(provider, log.GetSugaredLogger(), opts)
	if err := application.Run(ctx); err != nil {
		log.Errorf("cleaning failed: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
