package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatCitation stores the attribution extracted from a finished answer.
// Source is a display string, never empty: answers without an
// identifiable source carry the "no specific source" sentinel.
type ChatCitation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatMessageId uuid.UUID `gorm:"type:uuid;not null;index"`
	Source        string
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	// Relationships
	ChatMessage *ChatMessage `gorm:"foreignKey:ChatMessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
