package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template types that exist outside the reminder buckets.
const (
	TemplateTypeWelcome = "welcome"
	TemplateTypeRenewal = "renewal"
)

type MessageTemplate struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:uq_user_template_type,priority:1"`

	Name         string `gorm:"not null"`
	TemplateType string `gorm:"type:varchar(40);not null;uniqueIndex:uq_user_template_type,priority:2"`
	Subject      string
	Content      string `gorm:"type:text;not null"`
	IsActive     bool   `gorm:"default:true"`
	IsDefault    bool   `gorm:"default:false"`

	gorm.Model
}

func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
