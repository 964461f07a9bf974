package assemble

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"construction-assist-be/pkg/channel"
	"construction-assist-be/pkg/contextcache"
	"construction-assist-be/pkg/normalize"
	"construction-assist-be/pkg/tasks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocSource struct {
	refs []contextcache.DocumentRef
}

func (f *fakeDocSource) ListDocuments(_ context.Context, _ uuid.UUID) ([]contextcache.DocumentRef, error) {
	return f.refs, nil
}

type fakeHistory struct {
	messages []channel.Message
	err      error
}

func (f *fakeHistory) FetchHistory(_ context.Context, _ string) ([]channel.Message, error) {
	return f.messages, f.err
}

type fakeTracker struct {
	name   string
	result tasks.Result
	err    error
}

func (f *fakeTracker) Name() string { return f.name }

func (f *fakeTracker) FetchTasks(_ context.Context, _ string, _ bool) (tasks.Result, error) {
	return f.result, f.err
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeDoc(t *testing.T, name, content string) contextcache.DocumentRef {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return contextcache.DocumentRef{FilePath: path, MediaType: "text/plain"}
}

func newTestAssembler(t *testing.T, refs []contextcache.DocumentRef, history channel.HistoryProvider, format FormatOptions, deploymentTemplate string) *Assembler {
	t.Helper()
	cache := contextcache.New(
		normalize.NewNormalizer(50, discard()),
		&fakeDocSource{refs: refs},
		discard(),
	)
	return NewAssembler(cache, history, format, deploymentTemplate, discard())
}

func TestAssembleOrdersSourcesDocumentsMessagesTasks(t *testing.T) {
	refs := []contextcache.DocumentRef{writeDoc(t, "notes.txt", "rebar delivered")}
	history := &fakeHistory{messages: []channel.Message{
		{Speaker: "foreman", Timestamp: 1726012800, Text: "pour moved to Monday"},
	}}
	tracker := &fakeTracker{name: "Asana", result: tasks.Result{
		Success:     true,
		ProjectName: "Tower A",
		Tasks:       []tasks.Task{{Name: "Pour slab", DueDate: "2026-09-01", Assignee: "Bob"}},
	}}

	a := newTestAssembler(t, refs, history, DefaultFormatOptions(), "")
	result := a.Assemble(context.Background(), Request{
		ConversationID:   uuid.New(),
		ConversationName: "Tower A",
		ChannelID:        "C123",
		TaskSources:      []TaskSource{{Provider: tracker, ProjectID: "p1"}},
	})

	records := strings.Split(result.PromptContext, "\n\n")
	require.Len(t, records, 3)
	assert.True(t, strings.HasPrefix(records[0], "Text File:"))
	assert.Contains(t, records[0], "1: rebar delivered")
	assert.Equal(t, "Slack message FROM: foreman DATE: 2024-09-11 00:00: pour moved to Monday", records[1])
	assert.Equal(t, "Tasks from Asana project \"Tower A\":\n[ ] Pour slab (Due: 2026-09-01) (Assigned to: Bob)", records[2])

	assert.Equal(t, []string{"uploaded documents", "channel messages", `Asana project "Tower A"`}, result.Sources)
	assert.Contains(t, result.SystemInstructions, `"Tower A"`)
	assert.Contains(t, result.SystemInstructions, "uploaded documents, channel messages")
	assert.Contains(t, result.SystemInstructions, "current task status")
}

func TestAssembleChannelFailureYieldsZeroMessageLines(t *testing.T) {
	refs := []contextcache.DocumentRef{writeDoc(t, "notes.txt", "rebar delivered")}
	history := &fakeHistory{err: errors.New("slack is down")}

	a := newTestAssembler(t, refs, history, DefaultFormatOptions(), "")
	result := a.Assemble(context.Background(), Request{
		ConversationID: uuid.New(),
		ChannelID:      "C123",
	})

	assert.NotContains(t, result.PromptContext, "Slack message")
	assert.NotContains(t, result.Sources, "channel messages")
	assert.Contains(t, result.PromptContext, "rebar delivered")
}

func TestAssembleFormatTogglesDropWholeSegments(t *testing.T) {
	msg := channel.Message{Speaker: "foreman", Timestamp: 1726012800, Text: "hi"}

	tests := []struct {
		name string
		opts FormatOptions
		want string
	}{
		{
			name: "speaker only",
			opts: FormatOptions{MessagePrefix: "Slack message", IncludeSpeaker: true},
			want: "Slack message FROM: foreman: hi",
		},
		{
			name: "timestamp only",
			opts: FormatOptions{MessagePrefix: "Slack message", IncludeTimestamp: true},
			want: "Slack message DATE: 2024-09-11 00:00: hi",
		},
		{
			name: "neither",
			opts: FormatOptions{MessagePrefix: "Slack message"},
			want: "Slack message: hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatChannelMessage(msg, tt.opts))
		})
	}
}

func TestAssembleTrackerPrefixOnlyWithMultipleTrackers(t *testing.T) {
	asana := &fakeTracker{name: "Asana", result: tasks.Result{
		Success: true, ProjectName: "Tower A",
		Tasks: []tasks.Task{{Name: "Pour slab"}},
	}}
	monday := &fakeTracker{name: "Monday", result: tasks.Result{
		Success: true, ProjectName: "Tower B",
		Tasks: []tasks.Task{{Name: "Order glass", Completed: true}},
	}}

	a := newTestAssembler(t, nil, nil, DefaultFormatOptions(), "")

	both := a.Assemble(context.Background(), Request{
		ConversationID: uuid.New(),
		TaskSources: []TaskSource{
			{Provider: asana, ProjectID: "p1"},
			{Provider: monday, ProjectID: "b1"},
		},
	})
	assert.Contains(t, both.PromptContext, "[Asana] [ ] Pour slab")
	assert.Contains(t, both.PromptContext, "[Monday] [x] Order glass")

	single := a.Assemble(context.Background(), Request{
		ConversationID: uuid.New(),
		TaskSources:    []TaskSource{{Provider: asana, ProjectID: "p1"}},
	})
	assert.Contains(t, single.PromptContext, "\n[ ] Pour slab")
	assert.NotContains(t, single.PromptContext, "[Asana] [ ]")
}

func TestAssembleSkipsFailedTrackerAndKeepsRest(t *testing.T) {
	broken := &fakeTracker{name: "Asana", result: tasks.Result{
		Success: false, FailureReason: "project not found",
	}}
	working := &fakeTracker{name: "Monday", result: tasks.Result{
		Success: true, ProjectName: "Tower B",
		Tasks: []tasks.Task{{Name: "Order glass"}},
	}}

	a := newTestAssembler(t, nil, nil, DefaultFormatOptions(), "")
	result := a.Assemble(context.Background(), Request{
		ConversationID: uuid.New(),
		TaskSources: []TaskSource{
			{Provider: broken, ProjectID: "p1"},
			{Provider: working, ProjectID: "b1"},
		},
	})

	assert.NotContains(t, result.PromptContext, "Asana")
	assert.Contains(t, result.PromptContext, "Tasks from Monday project \"Tower B\"")
	assert.Equal(t, []string{`Monday project "Tower B"`}, result.Sources)
}

func TestAssembleCountsDiagnosticChunksWithoutIncludingThem(t *testing.T) {
	refs := []contextcache.DocumentRef{
		writeDoc(t, "good.txt", "rebar delivered"),
		{FilePath: "/nonexistent/broken.pdf", MediaType: "application/pdf"},
	}

	a := newTestAssembler(t, refs, nil, DefaultFormatOptions(), "")
	result := a.Assemble(context.Background(), Request{ConversationID: uuid.New()})

	assert.Equal(t, 1, result.DiagnosticChunks)
	assert.Contains(t, result.PromptContext, "rebar delivered")
	assert.NotContains(t, result.PromptContext, "broken.pdf")
}

func TestTemplatePrecedence(t *testing.T) {
	tests := []struct {
		name                 string
		conversationOverride string
		deploymentOverride   string
		want                 string
	}{
		{"conversation wins", "conv {conversation_name}", "deploy", "conv "},
		{"deployment next", "", "deploy {conversation_name}", "deploy "},
		{"default last", "", "", DefaultTemplate[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := selectTemplate(tt.conversationOverride, tt.deploymentOverride)
			rendered := renderTemplate(tmpl, templateData{ConversationName: "Tower A"})
			assert.Contains(t, rendered, strings.ReplaceAll(tt.want, "{conversation_name}", ""))
		})
	}
}

func TestTemplateRendersNoSourcesAsNone(t *testing.T) {
	rendered := renderTemplate(DefaultTemplate, templateData{ConversationName: "Tower A"})
	assert.Contains(t, rendered, "Available sources: none.")
	assert.NotContains(t, rendered, "{task_note}")
	assert.NotContains(t, rendered, "current task status")
}
