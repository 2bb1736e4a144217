// Package main provides the dev blog news report command-line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"devblognews/internal/config"
	"devblognews/internal/fetcher"
	"devblognews/internal/logger"
	"devblognews/internal/report"
	"devblognews/internal/views"

	"github.com/joho/godotenv"
)

// ErrUnparseableDate indicates a date argument in an unsupported format.
var ErrUnparseableDate = errors.New("unable to parse date")

// Accepted date argument layouts. Year-first forms only: day-first and
// month-first layouts are ambiguous and rejected.
var dateLayouts = []string{"2006-01-02", "2006/01/02"}

const defaultConfigPath = "configs/report.yaml"

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	csvPath := flag.String("csv", "", "Path to the views CSV export (overrides config)")
	outputDir := flag.String("output-dir", "", "Directory for output files (overrides config)")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	// Optional .env file with environment overrides.
	_ = godotenv.Load()

	cfg := loadConfig(*configFile)

	if *csvPath != "" {
		cfg.Input.ViewsCSV = *csvPath
	}

	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	if baseURL := os.Getenv("DEVBLOG_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	if level := os.Getenv("DEVBLOG_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	lg := logger.NewLogger(cfg.Logging.Level)

	// Parse the date argument before any network or file I/O.
	label := "all"

	var after *time.Time

	if arg := flag.Arg(0); arg != "" {
		parsed, err := parseDateArg(arg)
		if err != nil {
			log.Fatalf("❌ %v\n", err)
		}

		after = &parsed
		label = arg
	}

	fmt.Println("📰 Dev Blog News Report")
	fmt.Printf("API: %s (%d post types)\n", cfg.API.BaseURL, len(cfg.API.PostTypes))
	fmt.Printf("Date filter: %s\n", displayLabel(label))
	fmt.Println()

	fmt.Printf("⏳ Importing view counts from: %s\n", cfg.Input.ViewsCSV)

	importer := views.NewImporter(lg)

	viewsData, stats, err := importer.ImportFile(cfg.Input.ViewsCSV)
	if err != nil {
		log.Fatalf("❌ Failed to import views: %v\n", err)
	}

	fmt.Printf("✅ Imported %d records (%d rows skipped)\n", stats.Processed, stats.Skipped)

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		log.Fatalf("❌ Could not create output directory: %v\n", err)
	}

	viewsJSONPath := filepath.Join(cfg.Output.Dir, cfg.Output.ViewsJSON)
	if err := importer.SaveJSON(viewsData, viewsJSONPath); err != nil {
		log.Fatalf("❌ Failed to write views data: %v\n", err)
	}

	fmt.Printf("💾 Views data saved to: %s\n", viewsJSONPath)

	fmt.Printf("\n🚀 Fetching %d post types...\n", len(cfg.API.PostTypes))

	posts := fetcher.NewFetcher(&cfg.API, lg).FetchAll(after, viewsData)
	if len(posts) == 0 {
		fmt.Println("⚠️  No posts found.")

		return
	}

	markdown := report.Render(posts, label)

	reportPath := filepath.Join(cfg.Output.Dir, report.Filename(cfg.Output.ReportPrefix, label))
	if err := os.WriteFile(reportPath, []byte(markdown), 0644); err != nil {
		log.Fatalf("❌ Failed to write report: %v\n", err)
	}

	fmt.Printf("\n✅ Found %d posts published after %s\n", len(posts), displayLabel(label))
	fmt.Printf("📝 Markdown report saved to: %s\n", reportPath)
}

// loadConfig loads the explicit config file, falls back to the default
// location, and finally to built-in defaults.
func loadConfig(configFile string) *config.Config {
	if configFile != "" {
		fmt.Printf("⚙️  Loading configuration from: %s\n", configFile)

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v\n", err)
		}

		return cfg
	}

	if _, err := os.Stat(defaultConfigPath); err == nil {
		fmt.Printf("⚙️  Loading default configuration: %s\n", defaultConfigPath)

		cfg, err := config.LoadConfig(defaultConfigPath)
		if err != nil {
			log.Fatalf("❌ Failed to load default config: %v\n", err)
		}

		return cfg
	}

	return config.DefaultConfig()
}

// parseDateArg parses the minimum-publication-date argument.
func parseDateArg(arg string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, arg); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q (use YYYY-MM-DD)", ErrUnparseableDate, arg)
}

func displayLabel(label string) string {
	if label == "all" {
		return "any date"
	}

	return label
}

func printUsage() {
	fmt.Println("Usage: ./bin/report [OPTIONS] [DATE]")
	fmt.Println()
	fmt.Println("Fetches published posts from the configured WordPress REST API, joins")
	fmt.Println("them with view counts from a CSV export, and writes a Markdown report.")
	fmt.Println()
	fmt.Println("DATE is optional and filters to posts published after it (YYYY-MM-DD).")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/report -csv views.csv")
	fmt.Println("  ./bin/report -config configs/report.yaml 2024-10-01")
	fmt.Println("  ./bin/report -csv views.csv -output-dir reports 2024/10/01")
}
