package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// normalizeText splits plain or delimited text into fixed-size line
// sections when the file exceeds the section threshold, a single chunk
// otherwise. Lines keep their global line numbers across sections.
func (n *Normalizer) normalizeText(filePath string) []Chunk {
	fileName := filepath.Base(filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		n.logger.Printf("[NORMALIZE] Failed to read text file %s: %v", fileName, err)
		return []Chunk{NewDiagnosticChunk(fileName,
			fmt.Sprintf("Failed to read text file %s: %v", fileName, err))}
	}

	return n.sectionLinesOf(string(data))
}

func (n *Normalizer) sectionLinesOf(content string) []Chunk {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimRight(content, "\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := strings.Split(content, "\n")

	numbered := make([]string, len(lines))
	for i, line := range lines {
		numbered[i] = fmt.Sprintf("%d: %s", i+1, line)
	}

	if len(numbered) <= n.sectionLines {
		return []Chunk{{
			Label: "Text File",
			Text:  strings.Join(numbered, "\n"),
		}}
	}

	var chunks []Chunk
	for start := 0; start < len(numbered); start += n.sectionLines {
		end := start + n.sectionLines
		if end > len(numbered) {
			end = len(numbered)
		}
		chunks = append(chunks, Chunk{
			Label: fmt.Sprintf("Text File Section %d", len(chunks)+1),
			Text:  strings.Join(numbered[start:end], "\n"),
		})
	}
	return chunks
}
