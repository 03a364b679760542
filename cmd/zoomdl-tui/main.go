package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tdika/zoom-recording-downloader/internal/config"
	"github.com/tdika/zoom-recording-downloader/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file")
		envFlag    = flag.String("env", "", "Path to .env file with Zoom credentials")
	)
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	creds, err := config.LoadCredentials(*envFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading credentials: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings, creds); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
