// Package config builds the immutable run configuration.
//
// All knobs are resolved once, up front, from flags, environment variables
// and an optional config file (via viper), then passed explicitly to the
// components that need them. Nothing reads the environment after startup.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the full, validated run configuration.
type Config struct {
	// Target selection. At least one of TargetURLs, TargetIDs or a
	// non-zero ID range must be present.
	TargetURLs      []string
	TargetIDs       []int
	IDFrom          int `validate:"gte=0"`
	IDTo            int `validate:"gte=0"`
	IDStep          int
	BaseURLTemplate string
	MaxProbe        int `validate:"gte=0"`

	// Fetching
	FetchMode   string        `validate:"oneof=static dynamic"`
	UserAgent   string        `validate:"required"`
	Timeout     time.Duration `validate:"gt=0"`
	Retries     int           `validate:"gte=1"`
	RetryDelay  time.Duration `validate:"gte=0"`
	PageDelay   time.Duration `validate:"gte=0"`
	DetailDelay time.Duration `validate:"gte=0"`
	Concurrency int           `validate:"gte=1"`

	// Completion
	FollowMenuImages bool

	// File sink
	OutputDir string `validate:"required"`
	Format    string `validate:"oneof=json jsonl yaml"`

	// Relational sink (enabled when DSN is set)
	DBDriver string `validate:"omitempty,oneof=sqlite mysql"`
	DBDSN    string

	// Spreadsheet sink (enabled when key and credentials are set)
	SheetKey      string
	SheetCredsB64 string
	SheetSettings bool
	SheetTargets  bool
}

const defaultUserAgent = "Mozilla/5.0 (compatible; ScraperBot/1.0; +https://github.com/kuuhaku1102/beauty)"

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("fetch_mode", "static")
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("retries", 3)
	v.SetDefault("retry_delay", 2*time.Second)
	v.SetDefault("page_delay", 2*time.Second)
	v.SetDefault("detail_delay", 500*time.Millisecond)
	v.SetDefault("concurrency", 1)
	v.SetDefault("output_dir", "output")
	v.SetDefault("format", "json")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("max_probe", 50)
	v.SetDefault("id_step", 1)
	v.SetDefault("sheet_settings", true)
	v.SetDefault("sheet_targets", true)
}

// FromViper resolves and validates the configuration.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		TargetURLs:       splitList(v.GetString("target_urls")),
		IDFrom:           v.GetInt("id_from"),
		IDTo:             v.GetInt("id_to"),
		IDStep:           v.GetInt("id_step"),
		BaseURLTemplate:  v.GetString("base_url_template"),
		MaxProbe:         v.GetInt("max_probe"),
		FetchMode:        v.GetString("fetch_mode"),
		UserAgent:        v.GetString("user_agent"),
		Timeout:          v.GetDuration("timeout"),
		Retries:          v.GetInt("retries"),
		RetryDelay:       v.GetDuration("retry_delay"),
		PageDelay:        v.GetDuration("page_delay"),
		DetailDelay:      v.GetDuration("detail_delay"),
		Concurrency:      v.GetInt("concurrency"),
		FollowMenuImages: v.GetBool("follow_menu_images"),
		OutputDir:        v.GetString("output_dir"),
		Format:           v.GetString("format"),
		DBDriver:         v.GetString("db_driver"),
		DBDSN:            v.GetString("db_dsn"),
		SheetKey:         v.GetString("gsheet_key"),
		SheetCredsB64:    v.GetString("gsheet_json_b64"),
		SheetSettings:    v.GetBool("sheet_settings"),
		SheetTargets:     v.GetBool("sheet_targets"),
	}

	ids, err := parseIDList(v.GetString("target_ids"))
	if err != nil {
		return Config{}, err
	}
	cfg.TargetIDs = ids

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RelationalEnabled reports whether the relational sink should run.
func (c Config) RelationalEnabled() bool {
	return c.DBDSN != ""
}

// SheetsEnabled reports whether the spreadsheet sink should run.
func (c Config) SheetsEnabled() bool {
	return c.SheetKey != "" && c.SheetCredsB64 != ""
}

// splitList splits a comma- or whitespace-separated list, dropping empties.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseIDList parses a comma- or whitespace-separated list of numeric IDs.
func parseIDList(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid target id %q: %w", p, err)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// MaskSecret summarizes a secret by length and boundary characters so it
// can be written to audit output without exposing the value.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return fmt.Sprintf("len=%d ****", len(s))
	}
	return fmt.Sprintf("len=%d %s...%s", len(s), s[:2], s[len(s)-2:])
}
