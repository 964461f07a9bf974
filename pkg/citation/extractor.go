package citation

import (
	"regexp"
	"strings"
)

// NoSourceSentinel is persisted when no attribution could be found.
// Callers must never see an empty citation: "no citation found" and
// "still pending" are different states.
const NoSourceSentinel = "No specific source available"

var (
	// Bracketed markers the model is instructed to emit, e.g.
	// "[From Page 3]", "[Source: Sheet Budget]", "[Slack message from Dana]".
	bracketMarkerRe = regexp.MustCompile(`\[\s*((?:From|Source:|Slack message)[^\]]+)\]`)

	// Secondary pattern used only when attribution is mandatory. The
	// phrase stays in the visible answer.
	accordingToRe = regexp.MustCompile(`(?i)according to\s+([^.,;\n]+)`)
)

// Result is the outcome of citation extraction.
type Result struct {
	VisibleText string
	Citation    string
}

// Extractor pulls the inline source marker out of a finished answer.
// It has no side effects; persistence is the caller's concern.
type Extractor struct {
	mandatoryAttribution bool
}

func NewExtractor(mandatoryAttribution bool) *Extractor {
	return &Extractor{mandatoryAttribution: mandatoryAttribution}
}

// Extract finds the bracketed citation marker, captures its inner text
// verbatim as the citation, and removes the marker (and only the marker)
// from the visible text. With no bracket marker and mandatory attribution
// enabled, an "according to X" phrase is used instead and left in place.
func (e *Extractor) Extract(answer string) Result {
	if m := bracketMarkerRe.FindStringSubmatchIndex(answer); m != nil {
		inner := strings.TrimSpace(answer[m[2]:m[3]])
		before, after := answer[:m[0]], answer[m[1]:]

		// Repair only the seam the removed marker leaves behind; text
		// away from the marker stays byte-identical.
		switch {
		case after == "":
			before = strings.TrimRight(before, " ")
		case before == "":
			after = strings.TrimLeft(after, " ")
		case strings.HasSuffix(before, " ") && strings.HasPrefix(after, " "):
			after = after[1:]
		}
		return Result{VisibleText: before + after, Citation: inner}
	}

	if e.mandatoryAttribution {
		if m := accordingToRe.FindStringSubmatch(answer); m != nil {
			return Result{
				VisibleText: answer,
				Citation:    strings.TrimSpace(m[1]),
			}
		}
	}

	return Result{VisibleText: answer, Citation: NoSourceSentinel}
}
