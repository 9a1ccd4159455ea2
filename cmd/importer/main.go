// Command importer is the terminal import wizard. It parses a product file
// locally, lets the user map its columns and posts the records to a catalog
// server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/catalog/internal/client"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	var (
		serverURL = flag.String("server", envOr("CATALOG_URL", "http://localhost:8080"), "catalog server base URL")
		apiKey    = flag.String("api-key", os.Getenv("CATALOG_API_KEY"), "API key sent as X-API-Key")
		logFile   = flag.String("log-file", envOr("IMPORTER_LOG_FILE", "importer.log"), "file receiving log output")
		logLevel  = flag.String("log-level", envOr("LOG_LEVEL", "info"), "debug, info, warn or error")
		maxSize   = flag.Int64("max-size", 20<<20, "largest file accepted, in bytes")
	)
	flag.Parse()

	// The wizard owns the terminal, so logs go to a file.
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	logging.SetupWriter(f, *logLevel, "text")

	slog.Info("importer starting", "server", *serverURL, "api_key_set", *apiKey != "")

	c := client.New(*serverURL, client.WithAPIKey(*apiKey))
	if _, err := tea.NewProgram(tui.New(c, *maxSize)).Run(); err != nil {
		slog.Error("importer failed", "error", err)
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(1)
	}
}
