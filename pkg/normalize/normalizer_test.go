package normalize

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestNormalizer(sectionLines int) *Normalizer {
	return NewNormalizer(sectionLines, log.New(io.Discard, "", 0))
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestNormalizeTextSectioning(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 60; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	path := writeTempFile(t, "daily_log.txt", sb.String())

	chunks := newTestNormalizer(50).Normalize(path, "text/plain")

	require.Len(t, chunks, 2)
	assert.Equal(t, "Text File Section 1", chunks[0].Label)
	assert.Equal(t, "Text File Section 2", chunks[1].Label)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "1: line 1"))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "51: line 51"))
	assert.False(t, chunks[0].Diagnostic)
}

func TestNormalizeTextSingleChunk(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "alpha\nbeta\ngamma\n")

	chunks := newTestNormalizer(50).Normalize(path, "text/plain")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Text File", chunks[0].Label)
	assert.Equal(t, "1: alpha\n2: beta\n3: gamma", chunks[0].Text)
}

func TestNormalizeUnsupportedType(t *testing.T) {
	path := writeTempFile(t, "model.bin", "\x00\x01\x02binary")

	chunks := newTestNormalizer(50).Normalize(path, "application/octet-stream")

	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].Diagnostic)
	assert.Contains(t, chunks[0].Text, "Unsupported file type")
}

func TestNormalizeMissingFile(t *testing.T) {
	chunks := newTestNormalizer(50).Normalize("/nonexistent/report.txt", "text/plain")

	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].Diagnostic)
}

func TestNormalizeExtensionFallback(t *testing.T) {
	// Declared type is junk; the .csv extension should still classify it.
	path := writeTempFile(t, "budget.csv", "item,cost\nrebar,1200\n")

	chunks := newTestNormalizer(50).Normalize(path, "application/x-unknown")

	require.Len(t, chunks, 1)
	assert.False(t, chunks[0].Diagnostic)
	assert.Contains(t, chunks[0].Text, "1: item,cost")
}

func TestNormalizeRichText(t *testing.T) {
	rtf := `{\rtf1\ansi{\*\generator Riched20}\pard Site meeting notes\par Concrete pour delayed\par}`
	path := writeTempFile(t, "minutes.rtf", rtf)

	chunks := newTestNormalizer(50).Normalize(path, "application/rtf")

	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, `\rtf`)
	assert.NotContains(t, chunks[0].Text, `\par`)
	assert.Contains(t, chunks[0].Text, "Site meeting notes")
	assert.Contains(t, chunks[0].Text, "Concrete pour delayed")
}

func TestNormalizeSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Cost"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Rebar"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1234.5))

	// Currency-styled cell renders with a symbol and two decimals.
	styleID, err := f.NewStyle(&excelize.Style{NumFmt: 7})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", styleID))

	// Formula without a cached result falls back to the raw formula.
	require.NoError(t, f.SetCellFormula("Sheet1", "B3", "SUM(B2)"))

	path := filepath.Join(t.TempDir(), "budget.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	chunks := newTestNormalizer(50).Normalize(path,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Sheet Sheet1", chunks[0].Label)
	assert.Contains(t, chunks[0].Text, "A1: Item")
	assert.Contains(t, chunks[0].Text, "A2: Rebar")
	assert.Contains(t, chunks[0].Text, "B2: $1234.50")
	assert.Contains(t, chunks[0].Text, "B3: =SUM(B2)")
}
