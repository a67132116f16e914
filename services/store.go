// services/store.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/models"
)

// Store is the persistence surface the scheduling engine depends on. The
// engine never touches gorm directly; tests swap in an in-memory store.
type Store interface {
	ActiveUsers() ([]models.User, error)
	GetUser(userID uuid.UUID) (*models.User, error)
	DeactivateUser(userID uuid.UUID) error

	// ScheduleSettingsFor returns the user's schedule settings, creating
	// a default row on first access.
	ScheduleSettingsFor(userID uuid.UUID) (*models.UserScheduleSettings, error)
	MarkMorningRun(settingsID uuid.UUID, day time.Time) error
	MarkReportRun(settingsID uuid.UUID, day time.Time) error

	// RemindableClients are the user's active clients that opted in to
	// automatic reminders.
	RemindableClients(userID uuid.UUID) ([]models.Client, error)
	ActiveClients(userID uuid.UUID) ([]models.Client, error)
	MarkReminderSent(clientID uuid.UUID, at time.Time) error
	DeactivateClientsOverdueSince(before time.Time) (int64, error)

	// ActiveTemplate returns the first active template matching any of the
	// template_type literals, tried in order. (nil, nil) when none match.
	ActiveTemplate(userID uuid.UUID, templateTypes []string) (*models.MessageTemplate, error)

	// SentToday reports whether a successful delivery was already logged
	// for this (user, client, template) at or after the given UTC instant.
	SentToday(userID, clientID, templateID uuid.UUID, since time.Time) (bool, error)
	AppendLog(entry *models.MessageLog) error
}

// GormStore backs Store with Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Find(&users, "is_active = ?", true).Error
	return users, err
}

func (s *GormStore) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) DeactivateUser(userID uuid.UUID) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("is_active", false).Error
}

func (s *GormStore) ScheduleSettingsFor(userID uuid.UUID) (*models.UserScheduleSettings, error) {
	var settings models.UserScheduleSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.UserScheduleSettings{
			UserID:              userID,
			MorningReminderTime: models.DefaultMorningReminderTime,
			DailyReportTime:     models.DefaultDailyReportTime,
			AutoSendEnabled:     true,
			IsActive:            true,
		}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *GormStore) MarkMorningRun(settingsID uuid.UUID, day time.Time) error {
	return s.db.Model(&models.UserScheduleSettings{}).Where("id = ?", settingsID).
		Update("last_morning_run", day).Error
}

func (s *GormStore) MarkReportRun(settingsID uuid.UUID, day time.Time) error {
	return s.db.Model(&models.UserScheduleSettings{}).Where("id = ?", settingsID).
		Update("last_report_run", day).Error
}

func (s *GormStore) RemindableClients(userID uuid.UUID) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.Where("user_id = ? AND status = ? AND auto_reminders_enabled = ?",
		userID, models.ClientStatusActive, true).Find(&clients).Error
	return clients, err
}

func (s *GormStore) ActiveClients(userID uuid.UUID) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.Where("user_id = ? AND status = ?",
		userID, models.ClientStatusActive).Find(&clients).Error
	return clients, err
}

func (s *GormStore) MarkReminderSent(clientID uuid.UUID, at time.Time) error {
	return s.db.Model(&models.Client{}).Where("id = ?", clientID).
		Update("last_reminder_sent", at).Error
}

func (s *GormStore) DeactivateClientsOverdueSince(before time.Time) (int64, error) {
	// due_date is a date column; compare as a date literal so the cutoff's
	// timezone never shifts the boundary.
	result := s.db.Model(&models.Client{}).
		Where("due_date < ? AND status = ?", before.Format("2006-01-02"), models.ClientStatusActive).
		Update("status", models.ClientStatusInactive)
	return result.RowsAffected, result.Error
}

func (s *GormStore) ActiveTemplate(userID uuid.UUID, templateTypes []string) (*models.MessageTemplate, error) {
	for _, templateType := range templateTypes {
		var template models.MessageTemplate
		err := s.db.Where("user_id = ? AND template_type = ? AND is_active = ?",
			userID, templateType, true).First(&template).Error
		if err == nil {
			return &template, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (s *GormStore) SentToday(userID, clientID, templateID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.MessageLog{}).
		Where("user_id = ? AND client_id = ? AND template_id = ? AND status = ? AND sent_at >= ?",
			userID, clientID, templateID, models.LogStatusSent, since).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) AppendLog(entry *models.MessageLog) error {
	return s.db.Create(entry).Error
}
