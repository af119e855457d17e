// Package export renders batch reports as spreadsheets.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docid/internal/batch"
)

const (
	SheetDocuments  = "Documents"
	SheetDuplicates = "Duplicates"
)

// Service produces XLSX bytes for batch reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteBatchXLSX returns a workbook with one row per file on the Documents
// sheet and one row per duplicate identifier on the Duplicates sheet.
func (s *Service) WriteBatchXLSX(rep batch.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("xlsx close error", "error", err)
		}
	}()

	// the default sheet becomes Documents
	if err := f.SetSheetName(f.GetSheetName(0), SheetDocuments); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetDuplicates); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := writeDocuments(f, rep.Items); err != nil {
		return nil, err
	}
	if err := writeDuplicates(f, rep.Duplicates); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("batch xlsx written",
		"rows", len(rep.Items),
		"duplicate_groups", len(rep.Duplicates),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeDocuments(f *excelize.File, items []batch.Item) error {
	const sheet = SheetDocuments
	if err := writeRow(f, sheet, 1, "File", "Identifier", "Class", "Path", "Format", "Size", "Bytes", "Notes"); err != nil {
		return err
	}
	for i, it := range items {
		r := it.Result
		notes := it.Err
		if notes == "" {
			notes = strings.Join(r.Warnings, "; ")
		}
		err := writeRow(f, sheet, i+2,
			it.File,
			r.ID.String(),
			string(r.Class),
			string(r.Path),
			string(r.Format),
			humanize.Bytes(uint64(max(r.Size, 0))),
			r.Size,
			truncate(notes, 140),
		)
		if err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 48) // file
	_ = f.SetColWidth(sheet, "B", "B", 28) // id
	_ = f.SetColWidth(sheet, "C", "F", 12)
	_ = f.SetColWidth(sheet, "H", "H", 48) // notes
	return nil
}

func writeDuplicates(f *excelize.File, dups map[string][]string) error {
	const sheet = SheetDuplicates
	if err := writeRow(f, sheet, 1, "Identifier", "Count", "Files"); err != nil {
		return err
	}
	ids := make([]string, 0, len(dups))
	for id := range dups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		if err := writeRow(f, sheet, i+2, id, len(dups[id]), strings.Join(dups[id], "\n")); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "C", "C", 80)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
