package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_phone,priority:1"`

	Name        string  `gorm:"not null"`
	PhoneNumber string  `gorm:"not null;uniqueIndex:idx_user_phone,priority:2"`
	PlanName    string  `gorm:"not null"`
	PlanPrice   float64 `gorm:"type:decimal(10,2);not null"`
	Server      string
	OtherInfo   string  `gorm:"type:text"`

	// DueDate is a calendar date; the time part is always midnight.
	DueDate time.Time `gorm:"type:date;not null"`

	Status               string `gorm:"type:varchar(20);default:'active'"` // active, inactive
	AutoRemindersEnabled bool   `gorm:"default:true"`
	LastReminderSent     *time.Time

	gorm.Model
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
