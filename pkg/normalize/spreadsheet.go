package normalize

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// builtin number format ids, per ECMA-376.
var currencyNumFmts = map[int]bool{5: true, 6: true, 7: true, 8: true, 42: true, 44: true}

func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// normalizeSpreadsheet emits one chunk per non-empty sheet, labeled
// "Sheet <name>", with every populated cell rendered as "<ref>: <value>".
func (n *Normalizer) normalizeSpreadsheet(filePath string) []Chunk {
	fileName := filepath.Base(filePath)

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		n.logger.Printf("[NORMALIZE] Failed to open spreadsheet %s: %v", fileName, err)
		return []Chunk{NewDiagnosticChunk(fileName,
			fmt.Sprintf("Failed to open spreadsheet %s: %v", fileName, err))}
	}
	defer f.Close()

	var chunks []Chunk
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			chunks = append(chunks, NewDiagnosticChunk("Sheet "+sheet,
				fmt.Sprintf("Failed to read sheet %q of %s: %v", sheet, fileName, err)))
			continue
		}

		var lines []string
		for rowIdx, row := range rows {
			for colIdx, value := range row {
				ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					continue
				}
				rendered := n.renderCell(f, sheet, ref, value)
				if strings.TrimSpace(rendered) == "" {
					continue
				}
				lines = append(lines, fmt.Sprintf("%s: %s", ref, rendered))
			}
		}

		if len(lines) == 0 {
			continue
		}
		chunks = append(chunks, Chunk{
			Label: "Sheet " + sheet,
			Text:  strings.Join(lines, "\n"),
		})
	}

	return chunks
}

// renderCell applies value rendering rules: currency-styled numbers show a
// currency symbol with two decimals, date cells render YYYY-MM-DD, and
// formula cells show the cached result, falling back to the formula text.
func (n *Normalizer) renderCell(f *excelize.File, sheet, ref, formatted string) string {
	if formula, err := f.GetCellFormula(sheet, ref); err == nil && formula != "" {
		if strings.TrimSpace(formatted) != "" {
			return formatted // cached result
		}
		return "=" + formula
	}
	if strings.TrimSpace(formatted) == "" {
		return ""
	}

	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return formatted
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return formatted
	}

	custom := ""
	if style.CustomNumFmt != nil {
		custom = *style.CustomNumFmt
	}

	raw, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return formatted
	}

	if currencyNumFmts[style.NumFmt] || strings.Contains(custom, "$") {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return fmt.Sprintf("$%.2f", v)
		}
	}

	if isDateNumFmt(style.NumFmt) || looksLikeDateFormat(custom) {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}

	return formatted
}

func looksLikeDateFormat(numFmt string) bool {
	if numFmt == "" {
		return false
	}
	lower := strings.ToLower(numFmt)
	return strings.Contains(lower, "yy") ||
		(strings.Contains(lower, "d") && strings.Contains(lower, "m"))
}
