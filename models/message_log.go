package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LogStatusSent   = "sent"
	LogStatusFailed = "failed"
)

// MessageLog is the append-only delivery ledger. At most one row with
// status "sent" may exist per (user, client, template, business date); the
// sender pool writes exactly one row per job and rows are never updated.
type MessageLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null"`
	TemplateID uuid.UUID `gorm:"type:uuid;index;not null"`

	TemplateType   string `gorm:"type:varchar(40)"`
	RecipientPhone string
	MessageContent string `gorm:"type:text"`

	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`

	SentAt time.Time `gorm:"index"` // stored in UTC

	gorm.Model
}

func (m *MessageLog) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
