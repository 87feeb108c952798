// One-shot scrape run without the API server. Useful for cron jobs and for
// debugging a single portal with a visible browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/cache"
	"autoarbitrage/internal/config"
	"autoarbitrage/internal/database"
	"autoarbitrage/internal/pipeline"
	"autoarbitrage/internal/runner"
	"autoarbitrage/internal/scraper"
)

func main() {
	portals := flag.String("portals", "clickar,ayvens", "comma-separated portals to scrape")
	headless := flag.Bool("headless", true, "run the browser headless")
	dedupe := flag.Bool("dedupe", false, "keep only the latest record per plate across portals")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	cfg.Headless = *headless

	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sessions := browser.NewManager(browser.Options{
		Headless:      cfg.Headless,
		WaitTimeout:   cfg.WaitTimeout,
		CanaryURL:     cfg.CanaryURL,
		ScreenshotDir: cfg.ScreenshotDir,
	})

	adapters := buildAdapters(*portals, sessions)
	if len(adapters) == 0 {
		log.Fatalf("No known portals in -portals=%q", *portals)
	}

	policy := pipeline.KeepAll
	if *dedupe {
		policy = pipeline.KeepLatestPerPlate
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := runner.New(db, policy, adapters...).Run(ctx, cfg.Credentials)

	if err := cache.New(cfg.CacheFile, cfg.CacheTTL).Save(report.Records); err != nil {
		log.Printf("Failed to write cache: %v", err)
	}

	printReport(report)

	for _, p := range report.Portals {
		if p.Status != runner.StatusOK && p.Status != runner.StatusNoData {
			os.Exit(1)
		}
	}
}

func buildAdapters(portals string, sessions *browser.Manager) []scraper.PortalAdapter {
	var adapters []scraper.PortalAdapter
	for _, name := range strings.Split(portals, ",") {
		switch strings.TrimSpace(name) {
		case "clickar":
			adapters = append(adapters, scraper.NewClickar(sessions))
		case "ayvens":
			adapters = append(adapters, scraper.NewAyvens(sessions))
		case "":
		default:
			log.Printf("Unknown portal %q, skipping", name)
		}
	}
	return adapters
}

func printReport(report *runner.Report) {
	fmt.Printf("\nScrape finished in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	for _, p := range report.Portals {
		line := fmt.Sprintf("  %-10s %-18s %d records", p.Portal, p.Status, p.Records)
		if p.Error != "" {
			line += "  (" + p.Error + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("  saved: %d ok, %d failed\n", report.Saved.Success, report.Saved.Failed)
}
