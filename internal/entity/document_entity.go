package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded file registered for a conversation. The raw
// bytes live on disk at FilePath; MediaType is the client-declared type
// recorded at upload time.
type Document struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	FileName       string
	FilePath       string
	MediaType      string
	SizeBytes      int64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
