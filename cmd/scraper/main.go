// Command scraper downloads the registration portal page and writes its form
// schema (fields, validation rules, UI components) as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"udyam/internal/platform/logger"
	"udyam/internal/scraper"
)

func main() {
	url := flag.String("url", scraper.DefaultPortalURL, "registration page URL")
	out := flag.String("out", "udyam_form_schema.json", "output file")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	flag.Parse()

	log := logger.New(slog.LevelInfo)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s := scraper.New(*url,
		scraper.WithHTTPClient(&http.Client{Timeout: *timeout}),
		scraper.WithLogger(log),
	)
	schema, err := s.FetchSchema(ctx)
	if err != nil {
		log.Error("failed to extract form schema", "error", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Error("failed to encode schema", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Error("failed to write schema file", "error", err)
		os.Exit(1)
	}

	log.Info("form schema extracted",
		"file", *out,
		"step1_fields", len(schema.Step1),
		"step2_fields", len(schema.Step2),
		"buttons", len(schema.UIComponents.Buttons),
		"dropdowns", len(schema.UIComponents.Dropdowns),
	)
}
