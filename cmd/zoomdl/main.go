package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tdika/zoom-recording-downloader/internal/config"
	"github.com/tdika/zoom-recording-downloader/internal/download"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to config file")
		envFlag     = flag.String("env", "", "Path to .env file with Zoom credentials")
		outputFlag  = flag.String("output", "", "Output directory (overrides config)")
		monthsFlag  = flag.Int("months", -1, "How many trailing months to enumerate (overrides config)")
		workersFlag = flag.Int("workers", 0, "Max concurrent downloads (overrides config)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag  = flag.Bool("dry-run", false, "Enumerate recordings and write urls.txt without downloading")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *monthsFlag >= 0 {
		settings.MonthsBack = *monthsFlag
	}
	if *workersFlag > 0 {
		settings.MaxConcurrentDownloads = *workersFlag
	}

	creds, err := config.LoadCredentials(*envFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading credentials: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	// Create manager with progress callback
	manager := download.NewManager(settings, creds, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := "   "
		switch event.Level {
		case download.LevelError:
			prefix = " x "
		case download.LevelWarning:
			prefix = " ! "
		case download.LevelSuccess:
			prefix = " + "
		case download.LevelInfo:
			prefix = " > "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("Zoom Recording Downloader")
	fmt.Println("=========================")
	fmt.Println()

	if err := manager.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if _, err := manager.WriteManifest(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
		os.Exit(1)
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not downloading]")
		return
	}

	fmt.Println("\nStarting downloads...")
	fmt.Println()

	if err := manager.StartDownloads(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	summary := manager.Summary()
	received, total, filesReceived, filesTotal := manager.GetProgress()

	fmt.Println()
	fmt.Println("=========================")
	fmt.Printf("Complete! Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
	if total > 0 && received < total {
		fmt.Printf("   (%.2f MB expected)\n", float64(total)/1024/1024)
	}
	fmt.Printf("Successful downloads: %d\n", summary.Succeeded)
	fmt.Printf("Failed downloads:     %d\n", summary.Failed)
	fmt.Printf("Saved to: %s\n", summary.Dir)
}
