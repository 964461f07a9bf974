package normalize

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type fileKind int

const (
	kindUnknown fileKind = iota
	kindPDF
	kindSpreadsheet
	kindText
	kindRichText
)

// Normalizer converts uploaded files into citable text chunks. One call is
// a single pass over the file; the source file is never mutated.
type Normalizer struct {
	sectionLines int
	logger       *log.Logger
}

// NewNormalizer creates a normalizer. sectionLines is the line threshold
// and section size for text-family files.
func NewNormalizer(sectionLines int, logger *log.Logger) *Normalizer {
	if sectionLines <= 0 {
		sectionLines = 50
	}
	return &Normalizer{
		sectionLines: sectionLines,
		logger:       logger,
	}
}

// Normalize converts the file at filePath into an ordered chunk list.
// Unsupported or unreadable files never return an error: they yield a
// single diagnostic chunk so one bad upload cannot abort assembly for an
// entire conversation.
func (n *Normalizer) Normalize(filePath, declaredType string) []Chunk {
	fileName := filepath.Base(filePath)

	kind := classifyMediaType(declaredType)
	if kind == kindUnknown {
		kind = classifyExtension(filePath)
	}
	if kind == kindUnknown {
		// Last resort: sniff the file contents.
		if mt, err := mimetype.DetectFile(filePath); err == nil {
			kind = classifyMediaType(mt.String())
		}
	}

	var chunks []Chunk
	switch kind {
	case kindPDF:
		chunks = n.normalizePDF(filePath)
	case kindSpreadsheet:
		chunks = n.normalizeSpreadsheet(filePath)
	case kindText:
		chunks = n.normalizeText(filePath)
	case kindRichText:
		chunks = n.normalizeRichText(filePath)
	default:
		n.logger.Printf("[NORMALIZE] Unsupported file type %q for %s", declaredType, fileName)
		return []Chunk{NewDiagnosticChunk(fileName,
			fmt.Sprintf("Unsupported file type %q for %s; content not extracted", declaredType, fileName))}
	}

	if len(chunks) == 0 {
		chunks = []Chunk{NewDiagnosticChunk(fileName,
			fmt.Sprintf("No extractable content found in %s", fileName))}
	}
	return chunks
}

func classifyMediaType(mediaType string) fileKind {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch mt {
	case "application/pdf":
		return kindPDF
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel":
		return kindSpreadsheet
	case "text/csv", "text/plain", "text/tab-separated-values", "text/markdown":
		return kindText
	case "application/rtf", "text/rtf":
		return kindRichText
	}
	if strings.HasPrefix(mt, "text/") {
		return kindText
	}
	return kindUnknown
}

func classifyExtension(filePath string) fileKind {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return kindPDF
	case ".xlsx", ".xlsm", ".xls":
		return kindSpreadsheet
	case ".txt", ".csv", ".tsv", ".log", ".md":
		return kindText
	case ".rtf":
		return kindRichText
	}
	return kindUnknown
}
