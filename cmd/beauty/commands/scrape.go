package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kuuhaku1102/beauty/internal/config"
	"github.com/kuuhaku1102/beauty/internal/fetcher"
	"github.com/kuuhaku1102/beauty/internal/logger"
	"github.com/kuuhaku1102/beauty/internal/pipeline"
	"github.com/kuuhaku1102/beauty/internal/sink"
	"github.com/kuuhaku1102/beauty/internal/targets"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape listing pages into clinic, menu and hours records",
	Long: `Scrape resolves target pages, fetches and parses each one, completes
sparse cards from their detail pages, and writes the assembled records
to every configured sink.

Targets come from --urls, from --ids expanded through --base-url-template,
or from probing the --id-from/--id-to range. The file sink always runs;
the database sink runs when --db-dsn is set, and the Google Sheets sink
when both the spreadsheet key and credentials are configured.

Examples:
  # Two listing pages, JSONL card dump
  beauty scrape --urls "https://example.com/ranking/13 https://example.com/ranking/27" \
      --format jsonl

  # Dynamic fetching for script-rendered pages
  beauty scrape --urls "https://example.com/ranking/13" --fetch-mode dynamic

  # MySQL sink
  beauty scrape --ids 101,205 --base-url-template "https://example.com/clinic/%d/" \
      --db-driver mysql --db-dsn "user:pass@tcp(localhost:3306)/beauty"`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Target selection
	flags.StringP("urls", "u", "", "listing page URL(s), comma- or space-separated")
	flags.String("ids", "", "clinic ID(s) expanded through the base URL template")
	flags.Int("id-from", 0, "first clinic ID of a probed range")
	flags.Int("id-to", 0, "last clinic ID of a probed range")
	flags.Int("id-step", 1, "stride of the probed ID range")
	flags.String("base-url-template", "", "URL template for ID expansion (%d placeholder)")
	flags.Int("max-probe", 50, "max existence probes for an ID range")

	// Fetch settings
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.String("user-agent", "", "User-Agent header for all requests")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.Int("retries", 3, "fetch attempts per URL")
	flags.Duration("retry-delay", 2*time.Second, "base delay between fetch attempts")
	flags.Duration("page-delay", 2*time.Second, "pause after each listing page")
	flags.Duration("detail-delay", 500*time.Millisecond, "minimum spacing between any two requests")
	flags.IntP("concurrency", "c", 1, "concurrent listing pages")

	// Completion
	flags.Bool("follow-menu-images", false, "fetch menu detail pages to fill missing menu images")

	// Sinks
	flags.StringP("output-dir", "o", "output", "directory for CSV and card dump files")
	flags.String("format", "json", "card dump format: json, jsonl, yaml")
	flags.String("db-driver", "sqlite", "database driver: sqlite, mysql")
	flags.String("db-dsn", "", "database DSN (enables the database sink)")
	flags.String("gsheet-key", "", "Google Sheets spreadsheet key")
	flags.Bool("sheet-settings", true, "write the run-settings audit worksheet")
	flags.Bool("sheet-targets", true, "write the resolved-targets worksheet")

	for flag, key := range map[string]string{
		"urls":               "target_urls",
		"ids":                "target_ids",
		"id-from":            "id_from",
		"id-to":              "id_to",
		"id-step":            "id_step",
		"base-url-template":  "base_url_template",
		"max-probe":          "max_probe",
		"fetch-mode":         "fetch_mode",
		"user-agent":         "user_agent",
		"timeout":            "timeout",
		"retries":            "retries",
		"retry-delay":        "retry_delay",
		"page-delay":         "page_delay",
		"detail-delay":       "detail_delay",
		"concurrency":        "concurrency",
		"follow-menu-images": "follow_menu_images",
		"output-dir":         "output_dir",
		"format":             "format",
		"db-driver":          "db_driver",
		"db-dsn":             "db_dsn",
		"gsheet-key":         "gsheet_key",
		"sheet-settings":     "sheet_settings",
		"sheet-targets":      "sheet_targets",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		logger.Error("configuration rejected", "error", err)
		return err
	}

	pages, err := targets.NewResolver(cfg, nil).Resolve(ctx)
	if err != nil {
		logger.Error("target resolution failed", "error", err)
		return err
	}
	logger.Info("targets resolved", "pages", len(pages))

	f, err := buildFetcher(cfg)
	if err != nil {
		logger.Error("failed to create fetcher", "mode", cfg.FetchMode, "error", err)
		return err
	}
	defer func() { _ = f.Close() }()
	logger.Debug("fetcher ready", "type", f.Type())

	snap := pipeline.New(cfg, f).Run(ctx, pages)

	sinks := buildSinks(ctx, cfg)

	failed := 0
	for _, s := range sinks {
		if err := s.Write(ctx, snap); err != nil {
			failed++
			logger.Error("sink write failed", "sink", s.Name(), "error", err)
			continue
		}
		logger.Info("sink written", "sink", s.Name())
	}
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}

	if failed == len(sinks) {
		return fmt.Errorf("all %d sinks failed", len(sinks))
	}
	return nil
}

// buildFetcher creates the fetcher for the configured mode, sharing one
// politeness gate across listing, detail and menu-image requests.
func buildFetcher(cfg config.Config) (fetcher.Fetcher, error) {
	gate := fetcher.NewGate(cfg.DetailDelay)
	fcfg := fetcher.Config{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay,
	}

	switch cfg.FetchMode {
	case "dynamic":
		return fetcher.NewDynamic(fcfg, gate)
	case "static":
		return fetcher.NewStatic(fcfg, gate), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", cfg.FetchMode)
	}
}

// buildSinks assembles the enabled sinks. The file sink always runs; a sink
// that cannot be constructed is logged and skipped so the others still write.
func buildSinks(ctx context.Context, cfg config.Config) []sink.Sink {
	sinks := []sink.Sink{sink.NewFile(cfg.OutputDir, cfg.Format)}

	if cfg.RelationalEnabled() {
		s, err := sink.NewSQL(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			logger.Error("database sink unavailable", "driver", cfg.DBDriver, "error", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.SheetsEnabled() {
		s, err := sink.NewSheets(ctx, cfg)
		if err != nil {
			logger.Error("sheets sink unavailable", "error", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	return sinks
}
