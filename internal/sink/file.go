package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kuuhaku1102/beauty/internal/logger"
)

// utf8BOM makes the CSV files open cleanly in spreadsheet applications that
// sniff the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileSink writes the tabular record sets as CSV files plus one
// hierarchical cards file holding the raw per-card structures.
type FileSink struct {
	dir    string
	format string // cards file format: json, jsonl or yaml
}

// NewFile creates a file sink rooted at dir.
func NewFile(dir, format string) *FileSink {
	return &FileSink{dir: dir, format: format}
}

// Name identifies the sink in logs.
func (s *FileSink) Name() string { return "file" }

// Write persists the snapshot under the output directory.
func (s *FileSink) Write(_ context.Context, snap *Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
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

	if err := s.writeCSV("clinics.csv", ClinicColumns, clinicRows); err != nil {
		return err
	}
	if err := s.writeCSV("menus.csv", MenuColumns, menuRows); err != nil {
		return err
	}
	if err := s.writeCSV("hours.csv", HoursColumns, hoursRows); err != nil {
		return err
	}
	if err := s.writeCards(snap); err != nil {
		return err
	}

	logger.Info("file sink complete", "dir", s.dir,
		"clinics", len(snap.Clinics), "menus", len(snap.Menus), "hours", len(snap.Hours))
	return nil
}

func (s *FileSink) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM to %s: %w", name, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows to %s: %w", name, err)
	}
	w.Flush()
	return w.Error()
}

// writeCards serializes the raw candidate structures in the configured
// format for audit and debugging.
func (s *FileSink) writeCards(snap *Snapshot) error {
	name := "cards." + s.format
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	if err := encodeCards(w, s.format, snap); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return w.Flush()
}

func encodeCards(w io.Writer, format string, snap *Snapshot) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(snap.Cards)
	case "jsonl":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, card := range snap.Cards {
			if err := enc.Encode(card); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap.Cards); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported cards format: %s", format)
	}
}
