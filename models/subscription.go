package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionPending   = "pending"
	SubscriptionApproved  = "approved"
	SubscriptionRejected  = "rejected"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription tracks one reseller payment at the payment provider.
type Subscription struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	PaymentID string  `gorm:"uniqueIndex;not null"` // provider payment id
	Amount    float64 `gorm:"type:decimal(10,2);not null"`
	Status    string  `gorm:"type:varchar(20);default:'pending'"`

	PaidAt    *time.Time
	ExpiresAt *time.Time

	gorm.Model
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
