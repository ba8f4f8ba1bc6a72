// Package commands implements the CLI commands for beauty.
package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kuuhaku1102/beauty/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "beauty",
	Short: "Clinic review listing scraper",
	Long: `Beauty scrapes clinic review listing pages into three relational
record sets: clinics, treatment menus and business hours.

Point it at listing URLs (or clinic IDs with a URL template), and get
CSV files, a raw card dump, and optionally database rows and a Google
Sheets workbook.

Examples:
  # Scrape two listing pages into ./output
  beauty scrape --urls "https://example.com/ranking/13,https://example.com/ranking/27"

  # Expand clinic IDs through a URL template
  beauty scrape --ids "101,205" --base-url-template "https://example.com/clinic/%d/"

  # Probe an ID range and also write to SQLite
  beauty scrape --id-from 100 --id-to 120 \
      --base-url-template "https://example.com/clinic/%d/" \
      --db-dsn ./beauty.db`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.beauty.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	// A local .env carries credentials during development.
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".beauty")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// Environment variables
	viper.SetEnvPrefix("BEAUTY")
	viper.AutomaticEnv()

	// Unprefixed aliases kept for compatibility with existing deployments.
	_ = viper.BindEnv("target_urls", "BEAUTY_TARGET_URLS", "TARGET_URLS")
	_ = viper.BindEnv("target_ids", "BEAUTY_TARGET_IDS", "TARGET_IDS")
	_ = viper.BindEnv("id_from", "BEAUTY_ID_FROM", "ID_FROM")
	_ = viper.BindEnv("id_to", "BEAUTY_ID_TO", "ID_TO")
	_ = viper.BindEnv("id_step", "BEAUTY_ID_STEP", "ID_STEP")
	_ = viper.BindEnv("base_url_template", "BEAUTY_BASE_URL_TEMPLATE", "BASE_URL_TEMPLATE")
	_ = viper.BindEnv("output_dir", "BEAUTY_OUTPUT_DIR", "OUTPUT_DIR")
	_ = viper.BindEnv("db_driver", "BEAUTY_DB_DRIVER", "DB_DRIVER")
	_ = viper.BindEnv("db_dsn", "BEAUTY_DB_DSN", "DB_DSN")
	_ = viper.BindEnv("gsheet_key", "BEAUTY_GSHEET_KEY", "GSHEET_KEY")
	_ = viper.BindEnv("gsheet_json_b64", "BEAUTY_GSHEET_JSON_B64", "GSHEET_JSON_B64")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
