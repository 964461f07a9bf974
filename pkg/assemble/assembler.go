// Package assemble merges normalized documents, channel history and task
// records into one bounded prompt context with a templated instruction
// preamble.
package assemble

import (
	"context"
	"fmt"
	"log"
	"strings"

	"construction-assist-be/pkg/channel"
	"construction-assist-be/pkg/contextcache"
	"construction-assist-be/pkg/tasks"

	"github.com/google/uuid"
)

// TaskSource pairs a tracker with the project it should be read from.
type TaskSource struct {
	Provider         tasks.Provider
	ProjectID        string
	IncludeCompleted bool
}

// Request describes one assembly call.
type Request struct {
	ConversationID   uuid.UUID
	ConversationName string

	// ChannelID is empty when no channel is linked to the conversation.
	ChannelID   string
	TaskSources []TaskSource

	// TemplateOverride is the conversation-specific instruction template,
	// taking precedence over the deployment-wide one.
	TemplateOverride string
}

// Result is an assembled prompt: the context block, the rendered
// instruction preamble, and the source names the model is told to cite.
type Result struct {
	PromptContext      string
	SystemInstructions string
	Sources            []string

	// DiagnosticChunks counts document chunks excluded from the prompt
	// because extraction failed. Kept for observability.
	DiagnosticChunks int
}

type Assembler struct {
	cache              *contextcache.Cache
	history            channel.HistoryProvider
	format             FormatOptions
	deploymentTemplate string
	logger             *log.Logger
}

func NewAssembler(cache *contextcache.Cache, history channel.HistoryProvider, format FormatOptions, deploymentTemplate string, logger *log.Logger) *Assembler {
	return &Assembler{
		cache:              cache,
		history:            history,
		format:             format,
		deploymentTemplate: deploymentTemplate,
		logger:             logger,
	}
}

// Assemble builds the prompt context for one question. Records are
// concatenated documents first, then channel messages, then tasks,
// separated by blank lines; that order sets the model's implicit
// priority when sources conflict. Any single source failing is logged
// and omitted, never fatal.
func (a *Assembler) Assemble(ctx context.Context, req Request) Result {
	var records []string
	var sources []string
	diagnostics := 0

	// Documents are always re-fetched with a forced refresh: answer-time
	// freshness is worth more than the cache hit.
	chunks, err := a.cache.Get(ctx, req.ConversationID, true)
	if err != nil {
		a.logger.Printf("[ASSEMBLE] Document fetch failed for %s: %v", req.ConversationID, err)
	}
	documentRecords := 0
	for _, chunk := range chunks {
		if chunk.Diagnostic {
			diagnostics++
			a.logger.Printf("[ASSEMBLE] Skipping diagnostic chunk %q: %s", chunk.Label, chunk.Text)
			continue
		}
		records = append(records, formatDocumentChunk(chunk))
		documentRecords++
	}
	if documentRecords > 0 {
		sources = append(sources, "uploaded documents")
	}

	if req.ChannelID != "" && a.history != nil {
		messages, err := a.history.FetchHistory(ctx, req.ChannelID)
		if err != nil {
			a.logger.Printf("[ASSEMBLE] Channel history fetch failed for %s: %v", req.ChannelID, err)
			messages = nil
		}
		for _, msg := range messages {
			records = append(records, formatChannelMessage(msg, a.format))
		}
		if len(messages) > 0 {
			sources = append(sources, "channel messages")
		}
	}

	taskRecords := a.collectTasks(ctx, req.TaskSources, &records, &sources)

	result := Result{
		PromptContext:    strings.Join(records, "\n\n"),
		Sources:          sources,
		DiagnosticChunks: diagnostics,
	}

	result.SystemInstructions = renderTemplate(
		selectTemplate(req.TemplateOverride, a.deploymentTemplate),
		templateData{
			ConversationName: req.ConversationName,
			Sources:          sources,
			HasTasks:         taskRecords > 0,
		},
	)
	return result
}

// collectTasks fetches every linked tracker project and appends one
// record per project. Lines carry the tracker name as a prefix only when
// more than one tracker is linked.
func (a *Assembler) collectTasks(ctx context.Context, taskSources []TaskSource, records *[]string, sources *[]string) int {
	multiTracker := len(distinctTrackers(taskSources)) > 1

	appended := 0
	for _, src := range taskSources {
		result, err := src.Provider.FetchTasks(ctx, src.ProjectID, src.IncludeCompleted)
		if err != nil {
			a.logger.Printf("[ASSEMBLE] %s fetch failed for project %s: %v", src.Provider.Name(), src.ProjectID, err)
			continue
		}
		if !result.Success {
			a.logger.Printf("[ASSEMBLE] %s rejected project %s: %s", src.Provider.Name(), src.ProjectID, result.FailureReason)
			continue
		}
		if len(result.Tasks) == 0 {
			continue
		}

		prefix := ""
		if multiTracker {
			prefix = src.Provider.Name()
		}
		*records = append(*records, formatProjectTasks(src.Provider.Name(), result.ProjectName, result.Tasks, prefix))
		*sources = append(*sources, fmt.Sprintf("%s project %q", src.Provider.Name(), result.ProjectName))
		appended++
	}
	return appended
}

func distinctTrackers(taskSources []TaskSource) map[string]bool {
	trackers := make(map[string]bool)
	for _, src := range taskSources {
		trackers[src.Provider.Name()] = true
	}
	return trackers
}
