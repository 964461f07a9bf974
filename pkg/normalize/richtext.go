package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	rtfGroupRe   = regexp.MustCompile(`\{\\\*[^{}]*\}`)
	rtfHexRe     = regexp.MustCompile(`\\'([0-9a-fA-F]{2})`)
	rtfControlRe = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
)

// normalizeRichText strips RTF control sequences via textual substitution,
// then applies the same line sectioning as plain text.
func (n *Normalizer) normalizeRichText(filePath string) []Chunk {
	fileName := filepath.Base(filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		n.logger.Printf("[NORMALIZE] Failed to read rich text file %s: %v", fileName, err)
		return []Chunk{NewDiagnosticChunk(fileName,
			fmt.Sprintf("Failed to read rich text file %s: %v", fileName, err))}
	}

	return n.sectionLinesOf(stripRichTextMarkup(string(data)))
}

func stripRichTextMarkup(content string) string {
	// Paragraph and line controls become newlines before generic stripping.
	// \pard resets formatting and must not be mistaken for \par.
	content = strings.ReplaceAll(content, `\pard`, "")
	content = strings.ReplaceAll(content, `\par`, "\n")
	content = strings.ReplaceAll(content, `\line`, "\n")

	// Destination groups like {\*\generator ...} carry no document text.
	content = rtfGroupRe.ReplaceAllString(content, "")

	content = rtfHexRe.ReplaceAllStringFunc(content, func(m string) string {
		code, err := strconv.ParseUint(m[2:], 16, 8)
		if err != nil {
			return ""
		}
		return string(rune(code))
	})

	content = rtfControlRe.ReplaceAllString(content, "")
	content = strings.NewReplacer(`\{`, "{", `\}`, "}", `\\`, `\`, "{", "", "}", "").Replace(content)

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
