package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	v := newViper()

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}

	if cfg.FetchMode != "static" {
		t.Errorf("expected static fetch mode, got %q", cfg.FetchMode)
	}
	if cfg.Retries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Retries)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("expected concurrency 1, got %d", cfg.Concurrency)
	}
}

func TestFromViper_TargetLists(t *testing.T) {
	v := newViper()
	v.Set("target_urls", "https://a.example/1, https://a.example/2\nhttps://a.example/3")
	v.Set("target_ids", "101, 205 307")

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}

	if len(cfg.TargetURLs) != 3 {
		t.Errorf("expected 3 target URLs, got %d: %v", len(cfg.TargetURLs), cfg.TargetURLs)
	}
	if len(cfg.TargetIDs) != 3 || cfg.TargetIDs[2] != 307 {
		t.Errorf("expected IDs [101 205 307], got %v", cfg.TargetIDs)
	}
}

func TestFromViper_InvalidIDList(t *testing.T) {
	v := newViper()
	v.Set("target_ids", "101,abc")

	if _, err := FromViper(v); err == nil {
		t.Error("expected error for non-numeric target id")
	}
}

func TestFromViper_InvalidFetchMode(t *testing.T) {
	v := newViper()
	v.Set("fetch_mode", "browser")

	if _, err := FromViper(v); err == nil {
		t.Error("expected validation error for unknown fetch mode")
	}
}

func TestSinkToggles(t *testing.T) {
	v := newViper()
	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}
	if cfg.RelationalEnabled() {
		t.Error("relational sink should be off without a DSN")
	}
	if cfg.SheetsEnabled() {
		t.Error("spreadsheet sink should be off without credentials")
	}

	v.Set("db_dsn", "output/beauty.db")
	v.Set("gsheet_key", "key")
	v.Set("gsheet_json_b64", "e30=")
	cfg, err = FromViper(v)
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}
	if !cfg.RelationalEnabled() {
		t.Error("relational sink should be on with a DSN")
	}
	if !cfg.SheetsEnabled() {
		t.Error("spreadsheet sink should be on with key and credentials")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		exact  bool
		absent string
	}{
		{name: "empty", in: "", want: "", exact: true},
		{name: "short", in: "abc", want: "len=3 ****", exact: true},
		{name: "long", in: "supersecretvalue", want: "len=16 su...ue", exact: true, absent: "persecret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskSecret(tt.in)
			if tt.exact && got != tt.want {
				t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.absent != "" && strings.Contains(got, tt.absent) {
				t.Errorf("MaskSecret(%q) leaked secret content: %q", tt.in, got)
			}
		})
	}
}
