package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/utils"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null"`
	Name     string    `gorm:"not null"`
	// Phone is the reseller's own WhatsApp number, used for operator
	// notifications and the daily report.
	Phone string

	IsActive        bool `gorm:"default:true"`
	IsTrial         bool `gorm:"default:true"`
	TrialEndsAt     *time.Time
	NextDueDate     *time.Time
	LastPaymentDate *time.Time

	Clients   []Client          `gorm:"foreignKey:UserID"`
	Templates []MessageTemplate `gorm:"foreignKey:UserID"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
