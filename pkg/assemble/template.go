package assemble

import "strings"

// Placeholder tokens recognized by instruction templates.
const (
	placeholderConversation = "{conversation_name}"
	placeholderSources      = "{sources}"
	placeholderTaskNote     = "{task_note}"
)

// DefaultTemplate is the built-in instruction preamble, used when neither
// a conversation-specific nor a deployment-wide override is configured.
const DefaultTemplate = `You are an assistant for the construction project "{conversation_name}".
Answer questions using only the context provided below.
Always cite your source. Available sources: {sources}.
When citing, append a bracketed marker such as [From <source>] after the sentence it supports.
If the context does not contain the answer, say so plainly.{task_note}`

// taskNote is appended via the {task_note} placeholder only when task
// records are present in the assembled context.
const taskNote = "\nTask records from the linked project trackers are included below; treat them as the current task status."

type templateData struct {
	ConversationName string
	Sources          []string
	HasTasks         bool
}

// selectTemplate applies the precedence: conversation override →
// deployment override → built-in default.
func selectTemplate(conversationOverride, deploymentOverride string) string {
	if conversationOverride != "" {
		return conversationOverride
	}
	if deploymentOverride != "" {
		return deploymentOverride
	}
	return DefaultTemplate
}

func renderTemplate(tmpl string, data templateData) string {
	sources := "none"
	if len(data.Sources) > 0 {
		sources = strings.Join(data.Sources, ", ")
	}
	note := ""
	if data.HasTasks {
		note = taskNote
	}

	rendered := strings.ReplaceAll(tmpl, placeholderConversation, data.ConversationName)
	rendered = strings.ReplaceAll(rendered, placeholderSources, sources)
	rendered = strings.ReplaceAll(rendered, placeholderTaskNote, note)
	return rendered
}
