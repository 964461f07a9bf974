// Package tasks defines the task-tracker capability consumed by the
// context assembler.
package tasks

import "context"

// Task is one task record from an external tracker.
type Task struct {
	Name      string
	Completed bool
	DueDate   string // YYYY-MM-DD, empty when the tracker has none
	Assignee  string // empty when unassigned
}

// Result is one project's fetched task set. A tracker that cannot serve
// the project reports Success=false with a reason instead of erroring,
// so the assembler can log and degrade.
type Result struct {
	Success       bool
	Tasks         []Task
	ProjectName   string
	FailureReason string
}

// Provider fetches the tasks of one project. Name identifies the tracker
// ("Asana", "Monday") and is used as a line prefix when a conversation
// links more than one tracker.
type Provider interface {
	Name() string
	FetchTasks(ctx context.Context, projectID string, includeCompleted bool) (Result, error)
}
