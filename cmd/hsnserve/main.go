/*
Package main implements the HSN validation and suggestion server and CLI [DBG] application.

hsnserve classifies candidate HSN codes against a reference catalog and
retrieves catalog entries for free-text product descriptions using TF-IDF
cosine similarity with a keyword fallback. It can operate as a MessagePack
IPC server for integration with other services, or as a CLI application for
testing and debugging.

# Usage

Start the server with the default data path:

	hsnserve -data hsn_master.csv

Run in CLI mode with debug logging:

	hsnserve -data hsn_master.csv -c -d

# Configuration

Runtime configuration is managed through a TOML file:

	[index]
	max_features = 5000
	max_doc_ratio = 0.95
	bigrams = true

	[suggest]
	min_similarity = 0.1
	default_top_k = 5

The config file is created with defaults if it doesn't exist. A .env file in
the working directory may set HSNSERVE_DATA and HSNSERVE_CONFIG, which the
flags override.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout:

	{"id": "v1", "op": "validate", "code": "01011010"}
	{"id": "s1", "op": "suggest", "q": "breeding horses", "l": 5}

See pkg/server for the full message catalog.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hsnserve/internal/cli"
	"hsnserve/pkg/catalog"
	"hsnserve/pkg/config"
	"hsnserve/pkg/index"
	"hsnserve/pkg/server"
	"hsnserve/pkg/suggest"
	"hsnserve/pkg/validate"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	Version = "0.3.0"
	AppName = "hsnserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires the catalog, index, validator and engine together and hands
// control to the server or the CLI. It does not implement engine logic.
func main() {
	sigHandler()

	// .env is optional; flags take precedence over it.
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded .env file")
	}

	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", envOr("HSNSERVE_DATA", "hsn_master.csv"), "CSV file with HSN master data")
	configPath := flag.String("config", envOr("HSNSERVE_CONFIG", "hsnserve.toml"), "Path to TOML config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaults.Suggest.DefaultTopK, "Number of suggestions to return in CLI mode")
	threshold := flag.Float64("threshold", defaults.Suggest.MinSimilarity, "Minimum similarity for vector matches (0..1)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, err := config.InitConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(*configPath))

	entries, err := catalog.LoadCSV(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load master data: %v", err)
	}
	cat, err := catalog.New(entries)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}
	log.Debugf("Catalog ready: %d codes", cat.Len())

	ix, err := index.Build(cat.Descriptions(), index.Options{
		MaxFeatures: appConfig.Index.MaxFeatures,
		MinDocFreq:  appConfig.Index.MinDocFreq,
		MaxDocRatio: appConfig.Index.MaxDocRatio,
		Bigrams:     appConfig.Index.Bigrams,
	})
	if err != nil {
		log.Fatalf("Failed to build similarity index: %v", err)
	}
	log.Debugf("Similarity index ready: %d terms", ix.VocabSize())

	validator := validate.New(cat)
	engine := suggest.NewEngine(cat, ix)

	minSim := appConfig.Suggest.MinSimilarity
	if *threshold != defaults.Suggest.MinSimilarity {
		minSim = *threshold
	}
	if err := engine.SetMinSimilarity(minSim); err != nil {
		log.Fatalf("Invalid similarity threshold: %v", err)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(validator, engine, cat, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(*dataPath, cat.Len(), ix.VocabSize())

	srv := server.NewServer(validator, engine, cat, ix, appConfig)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// envOr returns an environment variable's value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// printVersion displays version info with light styling, stderr only.
func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print(fmt.Sprintf("[ %s ] HSN code validation and suggestions", AppName))
	logger.Print("", "version", Version)
	logger.Print("use -h or --help to see available options")
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataPath string, codes, terms int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("master data: ( %s )", dataPath)
	log.Infof("catalog: %d codes, index: %d terms", codes, terms)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
