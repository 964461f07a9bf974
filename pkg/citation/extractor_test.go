package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBracketMarker(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		wantCitation string
		wantVisible  string
	}{
		{
			name:         "from marker",
			answer:       "The pour is scheduled for Monday. [From Page 3]",
			wantCitation: "From Page 3",
			wantVisible:  "The pour is scheduled for Monday.",
		},
		{
			name:         "source marker",
			answer:       "Total cost is $14,000. [Source: Sheet Budget]",
			wantCitation: "Source: Sheet Budget",
			wantVisible:  "Total cost is $14,000.",
		},
		{
			name:         "channel message marker",
			answer:       "The crane arrives Tuesday [Slack message from Dana] per the latest update.",
			wantCitation: "Slack message from Dana",
			wantVisible:  "The crane arrives Tuesday per the latest update.",
		},
		{
			name:         "only first marker is stripped",
			answer:       "Deadline moved. [From Page 1] See also [From Page 2].",
			wantCitation: "From Page 1",
			wantVisible:  "Deadline moved. See also [From Page 2].",
		},
	}

	e := NewExtractor(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.answer)
			assert.Equal(t, tt.wantCitation, got.Citation)
			assert.Equal(t, tt.wantVisible, got.VisibleText)
			assert.NotContains(t, got.VisibleText, "["+tt.wantCitation+"]")
		})
	}
}

func TestExtractLeavesUnrelatedWhitespaceIntact(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		wantVisible string
	}{
		{
			name:        "interior double spaces survive",
			answer:      "Columns  C1  and  C2 are braced. [From Page 7]",
			wantVisible: "Columns  C1  and  C2 are braced.",
		},
		{
			name:        "newlines away from the marker survive",
			answer:      "Slab pour:\n- Friday morning\n- backup Monday [From Page 2] weather permitting.",
			wantVisible: "Slab pour:\n- Friday morning\n- backup Monday weather permitting.",
		},
		{
			name:        "leading and trailing whitespace survives",
			answer:      "  padded answer [Source: Sheet Budget] stays padded  ",
			wantVisible: "  padded answer stays padded  ",
		},
		{
			name:        "marker at the start leaves no leading seam",
			answer:      "[From Page 1] The footing is poured.",
			wantVisible: "The footing is poured.",
		},
	}

	e := NewExtractor(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.answer)
			assert.Equal(t, tt.wantVisible, got.VisibleText)
		})
	}
}

func TestExtractAccordingToFallback(t *testing.T) {
	answer := "According to the structural drawings, the beam depth is 600mm."

	mandatory := NewExtractor(true).Extract(answer)
	assert.Equal(t, "the structural drawings", mandatory.Citation)
	// Secondary-pattern citations are left in the visible text.
	assert.Equal(t, answer, mandatory.VisibleText)

	optional := NewExtractor(false).Extract(answer)
	assert.Equal(t, NoSourceSentinel, optional.Citation)
	assert.Equal(t, answer, optional.VisibleText)
}

func TestExtractNoSourceSentinel(t *testing.T) {
	answer := "I don't have enough information to answer that."

	got := NewExtractor(true).Extract(answer)
	assert.Equal(t, NoSourceSentinel, got.Citation)
	assert.Equal(t, answer, got.VisibleText)
	assert.NotEmpty(t, got.Citation)
}
