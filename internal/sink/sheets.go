package sink

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kuuhaku1102/beauty/internal/assemble"
	"github.com/kuuhaku1102/beauty/internal/config"
	"github.com/kuuhaku1102/beauty/internal/logger"
)

// Worksheet titles.
const (
	sheetClinics  = "clinics"
	sheetMenus    = "menus"
	sheetHours    = "hours"
	sheetSettings = "settings"
	sheetTargets  = "targets"
)

// Initial grid size for worksheets created on demand.
const (
	newSheetRows = 2000
	newSheetCols = 20
)

// SheetsSink appends the record sets to a Google Sheets spreadsheet, one
// worksheet per record set, each with a pinned header row that is recreated
// whenever it drifts from the expected column order.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	cfg           config.Config
}

// NewSheets authenticates with the base64-encoded service-account JSON from
// the configuration.
func NewSheets(ctx context.Context, cfg config.Config) (*SheetsSink, error) {
	credJSON, err := base64.StdEncoding.DecodeString(cfg.SheetCredsB64)
	if err != nil {
		return nil, fmt.Errorf("decode sheet credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, credJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheet credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSink{svc: svc, spreadsheetID: cfg.SheetKey, cfg: cfg}, nil
}

// Name identifies the sink in logs.
func (s *SheetsSink) Name() string { return "sheets" }

// Write appends the snapshot to the spreadsheet.
func (s *SheetsSink) Write(ctx context.Context, snap *Snapshot) error {
	existing, err := s.worksheetTitles(ctx)
	if err != nil {
		return err
	}

	clinicRows := make([][]string, 0, len(snap.Clinics))
	for _, r := range snap.Clinics {
		clinicRows = append(clinicRows, ClinicRow(r))
	}
	menuRows := make([][]string, 0, len(snap.Menus))
	for _, r := range snap.Menus {
		menuRows = append(menuRows, MenuRow(r))
	}
	hoursRows := make([][]string, 0, len(snap.Hours))
	for _, r := range snap.Hours {
		hoursRows = append(hoursRows, HoursRow(r))
	}

	worksheets := []struct {
		title  string
		header []string
		rows   [][]string
	}{
		{sheetClinics, ClinicColumns, clinicRows},
		{sheetMenus, MenuColumns, menuRows},
		{sheetHours, HoursColumns, hoursRows},
	}

	for _, ws := range worksheets {
		if err := s.ensureWorksheet(ctx, existing, ws.title); err != nil {
			return err
		}
		if err := s.ensureHeader(ctx, ws.title, ws.header); err != nil {
			return err
		}
		if err := s.appendRows(ctx, ws.title, ws.rows); err != nil {
			return err
		}
		logger.Info("sheet updated", "worksheet", ws.title, "rows", len(ws.rows))
	}

	if s.cfg.SheetSettings {
		if err := s.writeSettings(ctx, existing, snap); err != nil {
			return err
		}
	}
	if s.cfg.SheetTargets {
		if err := s.writeTargets(ctx, existing, snap); err != nil {
			return err
		}
	}

	return nil
}

// writeSettings records the run configuration for audit. Secrets are masked
// to length and boundary characters; full values are never written.
func (s *SheetsSink) writeSettings(ctx context.Context, existing map[string]bool, snap *Snapshot) error {
	if err := s.ensureWorksheet(ctx, existing, sheetSettings); err != nil {
		return err
	}
	header := []string{"timestamp_utc", "key", "value"}
	if err := s.ensureHeader(ctx, sheetSettings, header); err != nil {
		return err
	}
	return s.appendRows(ctx, sheetSettings, settingsRows(s.cfg, snap.Timestamp))
}

// writeTargets records every resolved page URL with its derived clinic id.
func (s *SheetsSink) writeTargets(ctx context.Context, existing map[string]bool, snap *Snapshot) error {
	if err := s.ensureWorksheet(ctx, existing, sheetTargets); err != nil {
		return err
	}
	header := []string{"timestamp_utc", "url", "clinic_id"}
	if err := s.ensureHeader(ctx, sheetTargets, header); err != nil {
		return err
	}

	rows := make([][]string, 0, len(snap.Targets))
	for _, u := range snap.Targets {
		rows = append(rows, []string{snap.Timestamp, u, assemble.ExtractClinicID(u)})
	}
	return s.appendRows(ctx, sheetTargets, rows)
}

func (s *SheetsSink) worksheetTitles(ctx context.Context) (map[string]bool, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("load spreadsheet metadata: %w", err)
	}
	titles := make(map[string]bool, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles[sh.Properties.Title] = true
		}
	}
	return titles, nil
}

func (s *SheetsSink) ensureWorksheet(ctx context.Context, existing map[string]bool, title string) error {
	if existing[title] {
		return nil
	}
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetCols,
					},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("create worksheet %s: %w", title, err)
	}
	existing[title] = true
	logger.Info("worksheet created", "title", title)
	return nil
}

// ensureHeader pins the header row, rewriting it when the live first row
// has drifted from the expected column order.
func (s *SheetsSink) ensureHeader(ctx context.Context, title string, header []string) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, title+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", title, err)
	}

	var current []string
	if len(resp.Values) > 0 {
		for _, v := range resp.Values[0] {
			current = append(current, fmt.Sprint(v))
		}
	}
	if headerMatches(current, header) {
		return nil
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, title+"!A1", &sheets.ValueRange{
		Values: [][]any{toAnyRow(header)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("rewrite header of %s: %w", title, err)
	}
	logger.Warn("header row recreated", "worksheet", title)
	return nil
}

func (s *SheetsSink) appendRows(ctx context.Context, title string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, toAnyRow(row))
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, title+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", title, err)
	}
	return nil
}

// headerMatches compares the live header to the expected columns, ignoring
// surrounding whitespace.
func headerMatches(current, expected []string) bool {
	if len(current) != len(expected) {
		return false
	}
	for i := range expected {
		if strings.TrimSpace(current[i]) != expected[i] {
			return false
		}
	}
	return true
}

// settingsRows summarizes the run configuration with secrets masked.
func settingsRows(cfg config.Config, ts string) [][]string {
	return [][]string{
		{ts, "schema_version", strconv.Itoa(SchemaVersion)},
		{ts, "fetch_mode", cfg.FetchMode},
		{ts, "concurrency", strconv.Itoa(cfg.Concurrency)},
		{ts, "page_delay", cfg.PageDelay.String()},
		{ts, "detail_delay", cfg.DetailDelay.String()},
		{ts, "follow_menu_images", strconv.FormatBool(cfg.FollowMenuImages)},
		{ts, "base_url_template", cfg.BaseURLTemplate},
		{ts, "db_dsn", config.MaskSecret(cfg.DBDSN)},
		{ts, "gsheet_json_b64", config.MaskSecret(cfg.SheetCredsB64)},
	}
}

func toAnyRow(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
