package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/PolicyEngine/forecast-sources/internal/chart"
	"github.com/PolicyEngine/forecast-sources/internal/config"
	"github.com/PolicyEngine/forecast-sources/internal/forecast"
	"github.com/PolicyEngine/forecast-sources/internal/server"
	"github.com/PolicyEngine/forecast-sources/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "chart":
		runChart(os.Args[2:])
	case "compare":
		runCompare(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: forecast-sources <command> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  chart     write the two-edition comparison chart as HTML")
	fmt.Fprintln(os.Stderr, "  compare   print one metric's values for two editions")
	fmt.Fprintln(os.Stderr, "  serve     run the web server with the interactive chart")
}

func runChart(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	base := fs.String("base", cfg.Forecast.BaseEdition, "base edition (dashed line)")
	comparison := fs.String("comparison", cfg.Forecast.ComparisonEdition, "comparison edition (solid line)")
	out := fs.String("out", "obr-comparison.html", "output HTML path")
	cacheDir := fs.String("cache", cfg.Data.CacheDir, "workbook cache directory (empty = platform temp dir)")
	yearsFlag := fs.String("years", "", "year window, e.g. 2025-2030 or 2025,2026")
	fs.Parse(args)

	years, err := parseYears(*yearsFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -years:", err)
		os.Exit(2)
	}
	if years == nil {
		years = cfg.Forecast.Years()
	}

	baseSnap, compSnap := loadPair(*base, *comparison, *cacheDir)

	if err := chart.WriteFile(*out, baseSnap, compSnap, years); err != nil {
		fmt.Fprintln(os.Stderr, "chart generation failed:", err)
		os.Exit(1)
	}
	fmt.Printf("chart written to %s\n", *out)
}

func runCompare(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	metric := fs.String("metric", "cpi", "metric name")
	base := fs.String("base", cfg.Forecast.BaseEdition, "base edition")
	comparison := fs.String("comparison", cfg.Forecast.ComparisonEdition, "comparison edition")
	cacheDir := fs.String("cache", cfg.Data.CacheDir, "workbook cache directory (empty = platform temp dir)")
	yearsFlag := fs.String("years", "", "year window, e.g. 2025-2030 or 2025,2026")
	format := fs.String("format", "table", "output format: table, csv or json")
	fs.Parse(args)

	years, err := parseYears(*yearsFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -years:", err)
		os.Exit(2)
	}
	if years == nil {
		years = cfg.Forecast.Years()
	}

	baseSnap, compSnap := loadPair(*base, *comparison, *cacheDir)
	result := baseSnap.Compare(compSnap, *metric, years)

	switch *format {
	case "table":
		result.RenderTable(os.Stdout)
	case "csv":
		if err := result.RenderCSV(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "csv output failed:", err)
			os.Exit(1)
		}
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "json output failed:", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default:
		fmt.Fprintln(os.Stderr, "unknown format:", *format)
		os.Exit(2)
	}
}

func runServe(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.Server.Port, "listen port")
	devMode := fs.Bool("dev", cfg.Server.DevMode, "development mode (no browser launch)")
	fs.Parse(args)

	cfg.Server.Port = *port
	cfg.Server.DevMode = *devMode

	fmt.Println("==========================================")
	fmt.Println("  forecast-sources - OBR forecast comparison")
	fmt.Println("==========================================")

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("server initialization failed: %v", err)
	}
	defer srv.Close()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("listening on port %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("opening browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("could not open a browser, visit %s manually\n", url)
		}
	} else {
		fmt.Printf("dev mode: visit %s\n", url)
	}

	fmt.Println("\npress Ctrl+C to stop...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nshutting down...")
}

func loadConfig() *config.AppConfig {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

// loadPair loads both editions, failing the process on either error. A
// failed download or an unknown edition surfaces immediately; there is no
// retry.
func loadPair(base, comparison, cacheDir string) (*forecast.Snapshot, *forecast.Snapshot) {
	baseSnap, err := forecast.Load(base, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading edition %s failed: %v\n", base, err)
		os.Exit(1)
	}
	compSnap, err := forecast.Load(comparison, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading edition %s failed: %v\n", comparison, err)
		os.Exit(1)
	}
	return baseSnap, compSnap
}

// parseYears accepts "2025-2030" ranges or "2025,2026" lists.
func parseYears(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if from, to, found := strings.Cut(value, "-"); found {
		fromYear, errFrom := strconv.Atoi(strings.TrimSpace(from))
		toYear, errTo := strconv.Atoi(strings.TrimSpace(to))
		if errFrom != nil || errTo != nil || toYear < fromYear {
			return nil, fmt.Errorf("bad range %q", value)
		}
		years := make([]int, 0, toYear-fromYear+1)
		for y := fromYear; y <= toYear; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	parts := strings.Split(value, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad year %q", part)
		}
		years = append(years, year)
	}
	return years, nil
}
