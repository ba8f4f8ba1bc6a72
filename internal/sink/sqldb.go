package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/kuuhaku1102/beauty/internal/logger"
)

// SQLSink appends the three record sets to a relational store. The schema
// is created if absent; rows are append-only and cross-run deduplication is
// deliberately left to downstream consumers.
type SQLSink struct {
	db     *sql.DB
	driver string
}

// Statements use ? placeholders, which both supported drivers accept.
var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS clinics (
		clinic_id       VARCHAR(32),
		rank_in_page    INTEGER,
		name            TEXT,
		clinic_url      TEXT,
		source_page_url TEXT,
		rating          DOUBLE PRECISION,
		reviews         INTEGER,
		snippet         TEXT,
		snippet_author  TEXT,
		access          TEXT,
		images          TEXT,
		features        TEXT,
		hours_raw       TEXT,
		prefecture      TEXT,
		city            TEXT,
		station         TEXT,
		timestamp_utc   VARCHAR(32),
		notes           TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS menus (
		clinic_id     VARCHAR(32),
		clinic_name   TEXT,
		title         TEXT,
		price_jpy     INTEGER,
		price_raw     TEXT,
		url           TEXT,
		pickup_flag   BOOLEAN,
		category_raw  TEXT,
		menu_image    TEXT,
		timestamp_utc VARCHAR(32)
	)`,
	`CREATE TABLE IF NOT EXISTS hours (
		clinic_id     VARCHAR(32),
		clinic_name   TEXT,
		day           VARCHAR(16),
		open_time     VARCHAR(8),
		close_time    VARCHAR(8),
		raw           TEXT,
		timestamp_utc VARCHAR(32)
	)`,
}

// NewSQL opens the store and ensures the schema exists. driver is "sqlite"
// (DSN is a file path) or "mysql" (standard DSN).
func NewSQL(ctx context.Context, driver, dsn string) (*SQLSink, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	for _, ddl := range tableDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	return &SQLSink{db: db, driver: driver}, nil
}

// Name identifies the sink in logs.
func (s *SQLSink) Name() string { return s.driver }

// Write appends the snapshot's records in one transaction.
func (s *SQLSink) Write(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertClinic = `INSERT INTO clinics (
		clinic_id, rank_in_page, name, clinic_url, source_page_url,
		rating, reviews, snippet, snippet_author, access,
		images, features, hours_raw, prefecture, city, station,
		timestamp_utc, notes
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, r := range snap.Clinics {
		if _, err := tx.ExecContext(ctx, insertClinic,
			r.ClinicID, r.Rank, r.Name, r.ClinicURL, r.SourcePageURL,
			r.Rating, r.ReviewCount, r.Snippet, r.SnippetAuthor, r.AccessText,
			r.Images, r.Features, r.HoursRaw, r.Prefecture, r.City, r.Station,
			r.Timestamp, r.Notes,
		); err != nil {
			return fmt.Errorf("insert clinic %s: %w", r.ClinicID, err)
		}
	}

	const insertMenu = `INSERT INTO menus (
		clinic_id, clinic_name, title, price_jpy, price_raw,
		url, pickup_flag, category_raw, menu_image, timestamp_utc
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, r := range snap.Menus {
		if _, err := tx.ExecContext(ctx, insertMenu,
			r.ClinicID, r.ClinicName, r.Title, r.PriceJPY, r.PriceRaw,
			r.URL, r.PickupFlag, r.CategoryRaw, r.MenuImage, r.Timestamp,
		); err != nil {
			return fmt.Errorf("insert menu %s: %w", r.Title, err)
		}
	}

	const insertHours = `INSERT INTO hours (
		clinic_id, clinic_name, day, open_time, close_time, raw, timestamp_utc
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, r := range snap.Hours {
		if _, err := tx.ExecContext(ctx, insertHours,
			r.ClinicID, r.ClinicName, r.Day, r.OpenTime, r.CloseTime, r.Raw, r.Timestamp,
		); err != nil {
			return fmt.Errorf("insert hours %s/%s: %w", r.ClinicID, r.Day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.Info("relational sink complete", "driver", s.driver,
		"clinics", len(snap.Clinics), "menus", len(snap.Menus), "hours", len(snap.Hours))
	return nil
}

// Close releases the database handle.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
