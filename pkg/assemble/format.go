package assemble

import (
	"fmt"
	"strings"
	"time"

	"construction-assist-be/pkg/channel"
	"construction-assist-be/pkg/normalize"
	"construction-assist-be/pkg/tasks"
)

// FormatOptions controls how channel messages are rendered into context
// lines. Speaker and timestamp segments are independently toggled.
type FormatOptions struct {
	MessagePrefix    string
	IncludeSpeaker   bool
	IncludeTimestamp bool
}

func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		MessagePrefix:    "Slack message",
		IncludeSpeaker:   true,
		IncludeTimestamp: true,
	}
}

func formatDocumentChunk(chunk normalize.Chunk) string {
	return chunk.Label + ":\n" + chunk.Text
}

// formatChannelMessage renders "<PREFIX> FROM: <speaker> DATE: <ts>: <text>".
// Disabled segments are dropped whole, label included.
func formatChannelMessage(msg channel.Message, opts FormatOptions) string {
	parts := []string{opts.MessagePrefix}
	if opts.IncludeSpeaker {
		parts = append(parts, "FROM: "+msg.Speaker)
	}
	if opts.IncludeTimestamp {
		ts := time.Unix(msg.Timestamp, 0).UTC().Format("2006-01-02 15:04")
		parts = append(parts, "DATE: "+ts)
	}
	return strings.Join(parts, " ") + ": " + msg.Text
}

// formatTaskLine renders one task with its status marker and optional
// due date and assignee. trackerPrefix is empty unless the conversation
// links more than one tracker.
func formatTaskLine(task tasks.Task, trackerPrefix string) string {
	marker := "[ ]"
	if task.Completed {
		marker = "[x]"
	}

	line := marker + " " + task.Name
	if task.DueDate != "" {
		line += " (Due: " + task.DueDate + ")"
	}
	if task.Assignee != "" {
		line += " (Assigned to: " + task.Assignee + ")"
	}
	if trackerPrefix != "" {
		line = "[" + trackerPrefix + "] " + line
	}
	return line
}

// formatProjectTasks renders one project's tasks as a single record: a
// header line followed by one line per task.
func formatProjectTasks(trackerName, projectName string, list []tasks.Task, trackerPrefix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tasks from %s project %q:", trackerName, projectName)
	for _, task := range list {
		b.WriteString("\n")
		b.WriteString(formatTaskLine(task, trackerPrefix))
	}
	return b.String()
}
