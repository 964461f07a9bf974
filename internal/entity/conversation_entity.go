package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the addressable unit a project's documents, channel and
// trackers are scoped to.
type Conversation struct {
	Id   uuid.UUID
	Name string

	// Linked external resources. Empty means not linked.
	SlackChannelId string
	AsanaProjectId string
	MondayBoardId  string

	// PromptTemplate overrides the deployment-wide instruction template
	// for this conversation only.
	PromptTemplate string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
