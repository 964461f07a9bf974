package normalize

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// normalizePDF extracts one chunk per page, labeled "Page N".
func (n *Normalizer) normalizePDF(filePath string) (chunks []Chunk) {
	fileName := filepath.Base(filePath)

	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			n.logger.Printf("[NORMALIZE] PDF extraction panic for %s: %v", fileName, r)
			chunks = []Chunk{NewDiagnosticChunk(fileName,
				fmt.Sprintf("Failed to extract text from PDF %s: malformed document", fileName))}
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		n.logger.Printf("[NORMALIZE] Failed to open PDF %s: %v", fileName, err)
		return []Chunk{NewDiagnosticChunk(fileName,
			fmt.Sprintf("Failed to open PDF %s: %v", fileName, err))}
	}
	defer f.Close()

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			chunks = append(chunks, NewDiagnosticChunk(
				fmt.Sprintf("Page %d", i),
				fmt.Sprintf("Failed to extract text from page %d of %s: %v", i, fileName, err)))
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Label: fmt.Sprintf("Page %d", i),
			Text:  text,
		})
	}

	return chunks
}
