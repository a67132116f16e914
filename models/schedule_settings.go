package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultMorningReminderTime = "09:00"
	DefaultDailyReportTime     = "08:00"
)

// UserScheduleSettings holds the per-account schedule configuration consumed
// by the tick loop. LastMorningRun/LastReportRun are compared by calendar
// date in the business timezone and are only ever written by the scheduler.
type UserScheduleSettings struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	MorningReminderTime string `gorm:"type:varchar(5);default:'09:00'"` // HH:MM
	DailyReportTime     string `gorm:"type:varchar(5);default:'08:00'"` // HH:MM

	AutoSendEnabled bool `gorm:"default:true"`
	IsActive        bool `gorm:"default:true"`

	LastMorningRun *time.Time `gorm:"type:date"`
	LastReportRun  *time.Time `gorm:"type:date"`

	gorm.Model
}

func (s *UserScheduleSettings) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
