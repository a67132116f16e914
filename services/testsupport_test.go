package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/models"
	"streampro-backend/utils"
)

// memoryStore is an in-memory Store for tests. Methods take the lock
// because the sender pool calls the store from multiple workers.
type memoryStore struct {
	mu sync.Mutex

	users     map[uuid.UUID]*models.User
	settings  map[uuid.UUID]*models.UserScheduleSettings // keyed by user id
	clients   []models.Client
	templates []models.MessageTemplate
	logs      []models.MessageLog

	reminderStamps map[uuid.UUID]time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:          make(map[uuid.UUID]*models.User),
		settings:       make(map[uuid.UUID]*models.UserScheduleSettings),
		reminderStamps: make(map[uuid.UUID]time.Time),
	}
}

func (m *memoryStore) ActiveUsers() ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memoryStore) GetUser(userID uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryStore) DeactivateUser(userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = false
	return nil
}

func (m *memoryStore) ScheduleSettingsFor(userID uuid.UUID) (*models.UserScheduleSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[userID]; ok {
		copied := *s
		return &copied, nil
	}
	s := &models.UserScheduleSettings{
		ID:                  uuid.New(),
		UserID:              userID,
		MorningReminderTime: models.DefaultMorningReminderTime,
		DailyReportTime:     models.DefaultDailyReportTime,
		AutoSendEnabled:     true,
		IsActive:            true,
	}
	m.settings[userID] = s
	copied := *s
	return &copied, nil
}

func (m *memoryStore) MarkMorningRun(settingsID uuid.UUID, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.settings {
		if s.ID == settingsID {
			d := day
			s.LastMorningRun = &d
			return nil
		}
	}
	return errors.New("settings not found")
}

func (m *memoryStore) MarkReportRun(settingsID uuid.UUID, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.settings {
		if s.ID == settingsID {
			d := day
			s.LastReportRun = &d
			return nil
		}
	}
	return errors.New("settings not found")
}

func (m *memoryStore) RemindableClients(userID uuid.UUID) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Client
	for _, c := range m.clients {
		if c.UserID == userID && c.Status == models.ClientStatusActive && c.AutoRemindersEnabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) ActiveClients(userID uuid.UUID) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Client
	for _, c := range m.clients {
		if c.UserID == userID && c.Status == models.ClientStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) MarkReminderSent(clientID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminderStamps[clientID] = at
	return nil
}

func (m *memoryStore) DeactivateClientsOverdueSince(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for i := range m.clients {
		c := &m.clients[i]
		if c.Status == models.ClientStatusActive && utils.DaysBetween(before, c.DueDate) < 0 {
			c.Status = models.ClientStatusInactive
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) ActiveTemplate(userID uuid.UUID, templateTypes []string) (*models.MessageTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, templateType := range templateTypes {
		for i := range m.templates {
			t := &m.templates[i]
			if t.UserID == userID && t.TemplateType == templateType && t.IsActive {
				copied := *t
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (m *memoryStore) SentToday(userID, clientID, templateID uuid.UUID, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.logs {
		if entry.UserID == userID && entry.ClientID == clientID &&
			entry.TemplateID == templateID && entry.Status == models.LogStatusSent &&
			!entry.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) AppendLog(entry *models.MessageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memoryStore) logCopies() []models.MessageLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MessageLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// captureNotifier records operator notifications.
type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *captureNotifier) Notify(userID uuid.UUID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

// captureSink collects enqueued jobs instead of sending them.
type captureSink struct {
	mu   sync.Mutex
	jobs []SendJob
	full bool
}

func (s *captureSink) Enqueue(job SendJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.jobs = append(s.jobs, job)
	return true
}

// fakeSender counts attempts and fails while failures is positive.
type fakeSender struct {
	mu       sync.Mutex
	attempts int
	failures int
	sent     []string
}

func (f *fakeSender) SendMessage(ctx context.Context, to, body string, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures != 0 {
		if f.failures > 0 {
			f.failures--
		}
		return errors.New("transport unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeSender) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}
