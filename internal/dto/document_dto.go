package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	MediaType string    `json:"media_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type GetDocumentsResponse struct {
	Id        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	MediaType string    `json:"media_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentChangedMessage is the payload published on the document-changed
// topic. Global deletions set Global and leave ConversationId zero.
type DocumentChangedMessage struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Global         bool      `json:"global"`
}
