package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	SlackChannelId string `json:"slack_channel_id,omitempty"`
	AsanaProjectId string `json:"asana_project_id,omitempty"`
	MondayBoardId  string `json:"monday_board_id,omitempty"`
	PromptTemplate string `json:"prompt_template,omitempty"`
}

type CreateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllConversationsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
	Citation  string    `json:"citation,omitempty"`
}

type SendChatRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	Chat           string    `json:"chat" validate:"required"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Citation  string    `json:"citation,omitempty"`
}

type SendChatResponse struct {
	ConversationId uuid.UUID             `json:"conversation_id"`
	Sent           *SendChatResponseChat `json:"sent"`
	Reply          *SendChatResponseChat `json:"reply"`
}

type DeleteConversationRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
}
