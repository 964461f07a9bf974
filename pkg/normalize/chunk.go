package normalize

// Chunk is a labeled unit of extracted document text. Label identifies
// provenance (page, sheet, or section) and is stable across re-processing
// of the same file.
type Chunk struct {
	Label string
	Text  string

	// Diagnostic marks a chunk whose Text is a failure description rather
	// than document content. Diagnostic chunks are excluded from prompts
	// but still surfaced in logs.
	Diagnostic bool
}

// NewDiagnosticChunk builds the single chunk emitted when a file cannot
// be processed.
func NewDiagnosticChunk(label, reason string) Chunk {
	return Chunk{
		Label:      label,
		Text:       reason,
		Diagnostic: true,
	}
}
