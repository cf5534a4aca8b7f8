// Package report builds the styled vehicles workbook from reconciled records.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/vero-group/fleet-cli/internal/model"
	"github.com/vero-group/fleet-cli/internal/recency"
)

// Row/cell fill colors, RGB without alpha.
const (
	colorHeader = "CCCCCC"
	colorGreen  = "007500"
	colorOrange = "FFA500"
	colorRed    = "B30000"
)

const sheetName = "Vehicles"

// Filename returns the dated workbook name for a report generated at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("vehicles_%s.xlsx", now.Format("2006-01-02"))
}

// SanitizeColumns reduces the caller's requested columns to names that exist
// in the records' field set, drops an explicitly requested rnr column (it is
// always emitted first, separately), and de-duplicates while preserving
// first-occurrence order.
func SanitizeColumns(records []model.Vehicle, requested []string) []string {
	known := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			known[k] = true
		}
	}

	seen := make(map[string]bool, len(requested))
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		if name == model.KeyRNR || !known[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Assemble sorts records by gruppe, projects the rnr column plus the
// sanitized requested columns, and emits the styled workbook. With colored
// set, the header gets a neutral fill, each row a fill by the hu recency
// bucket, and a labelIds cell carrying a resolved label color gets that font
// color. A cell style replaces the row style wholesale, so such cells also
// duplicate the row fill explicitly.
func Assemble(records []model.Vehicle, requested []string, colored bool, today time.Time) (*xlsx.File, error) {
	sorted := make([]model.Vehicle, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Get(model.KeyGruppe) < sorted[j].Get(model.KeyGruppe)
	})

	columns := SanitizeColumns(sorted, requested)

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "report: add sheet")
	}

	writeHeader(sheet, columns, colored)

	labelCol := -1
	for i, name := range columns {
		if name == model.KeyLabelIDs {
			labelCol = i + 1 // rnr occupies column 0
		}
	}

	for _, rec := range sorted {
		row := sheet.AddRow()
		cells := make([]*xlsx.Cell, 0, len(columns)+1)

		cell := row.AddCell()
		cell.SetString(rec.Get(model.KeyRNR))
		cells = append(cells, cell)
		for _, name := range columns {
			cell = row.AddCell()
			cell.SetString(rec.Get(name))
			cells = append(cells, cell)
		}

		if !colored {
			continue
		}

		rowColor := rowFillColor(rec, today)
		if rowColor != "" {
			for _, c := range cells {
				c.SetStyle(fillStyle(rowColor))
			}
		}
		if labelCol >= 0 && rec.Has(model.KeyLabelColor) {
			style := xlsx.NewStyle()
			style.Font.Color = argb(rec.Get(model.KeyLabelColor))
			style.ApplyFont = true
			if rowColor != "" {
				// The cell style discards the inherited row fill; carry it.
				style.Fill = *xlsx.NewFill("solid", argb(rowColor), argb(rowColor))
				style.ApplyFill = true
			}
			cells[labelCol].SetStyle(style)
		}
	}

	return f, nil
}

// writeHeader emits the bold header row: rnr first, then the sanitized
// requested columns.
func writeHeader(sheet *xlsx.Sheet, columns []string, colored bool) {
	row := sheet.AddRow()
	names := append([]string{model.KeyRNR}, columns...)
	for _, name := range names {
		cell := row.AddCell()
		cell.SetString(name)

		style := xlsx.NewStyle()
		style.Font.Bold = true
		style.ApplyFont = true
		if colored {
			style.Fill = *xlsx.NewFill("solid", argb(colorHeader), argb(colorHeader))
			style.ApplyFill = true
		}
		cell.SetStyle(style)
	}
}

// rowFillColor maps the record's hu recency bucket to a fill color. An
// unparsable or missing date means no fill; styling is cosmetic and never
// fails a run.
func rowFillColor(rec model.Vehicle, today time.Time) string {
	bucket, err := recency.Classify(rec.Get(model.KeyHU), today)
	if err != nil {
		return ""
	}
	switch bucket {
	case recency.BucketRecent:
		return colorGreen
	case recency.BucketAging:
		return colorOrange
	case recency.BucketStale:
		return colorRed
	default:
		return ""
	}
}

// fillStyle builds a solid-fill cell style for color.
func fillStyle(color string) *xlsx.Style {
	style := xlsx.NewStyle()
	style.Fill = *xlsx.NewFill("solid", argb(color), argb(color))
	style.ApplyFill = true
	return style
}

// argb normalizes a 6-digit RGB code (optionally "#"-prefixed, as label
// colors arrive from upstream) to the 8-digit ARGB form xlsx expects.
func argb(color string) string {
	color = strings.TrimPrefix(color, "#")
	if len(color) == 6 {
		return "FF" + color
	}
	return color
}
