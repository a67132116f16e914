package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampro-backend/models"
	"streampro-backend/utils"
)

func testClock(t *testing.T) *utils.Clock {
	t.Helper()
	clock, err := utils.NewClock("America/Sao_Paulo")
	require.NoError(t, err)
	return clock
}

func addTestUser(t *testing.T, store *memoryStore) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	store.users[userID] = &models.User{
		ID:       userID,
		Email:    "owner@example.com",
		Name:     "Owner",
		Phone:    "+5511900001111",
		IsActive: true,
	}
	return userID
}

func addTemplate(store *memoryStore, userID uuid.UUID, templateType, content string) models.MessageTemplate {
	template := models.MessageTemplate{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         templateType,
		TemplateType: templateType,
		Content:      content,
		IsActive:     true,
	}
	store.templates = append(store.templates, template)
	return template
}

func addClient(store *memoryStore, userID uuid.UUID, name string, dueDate time.Time) models.Client {
	client := models.Client{
		ID:                   uuid.New(),
		UserID:               userID,
		Name:                 name,
		PhoneNumber:          "+5511999990000",
		PlanName:             "Premium",
		PlanPrice:            35,
		DueDate:              dueDate,
		Status:               models.ClientStatusActive,
		AutoRemindersEnabled: true,
	}
	store.clients = append(store.clients, client)
	return client
}

func allBucketTemplates(store *memoryStore, userID uuid.UUID) {
	for _, bucket := range models.AllBuckets {
		addTemplate(store, userID, bucket.CanonicalTemplateType(), "Ola {nome}, vence {vencimento}")
	}
}

func TestProcessUserRemindersEnqueuesOneJobPerDueClient(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()
	today := clock.Today()

	allBucketTemplates(store, userID)
	addClient(store, userID, "Due today", today)
	addClient(store, userID, "Due tomorrow", today.AddDate(0, 0, 1))
	addClient(store, userID, "Due in two days", today.AddDate(0, 0, 2))
	addClient(store, userID, "Overdue", today.AddDate(0, 0, -3))
	addClient(store, userID, "Far future", today.AddDate(0, 0, 30))

	svc := NewReminderService(store, clock, sink)
	processed, warnings, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 4, processed)
	require.Len(t, sink.jobs, 4)

	types := make(map[string]int)
	for _, job := range sink.jobs {
		types[job.TemplateType]++
		assert.NotContains(t, job.Body, "{nome}", "placeholders must be rendered")
	}
	assert.Equal(t, map[string]int{
		"reminder_2_days":   1,
		"reminder_1_day":    1,
		"reminder_due_date": 1,
		"reminder_overdue":  1,
	}, types)
}

func TestProcessUserRemindersSkipsClientsAlreadySentToday(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	allBucketTemplates(store, userID)
	client := addClient(store, userID, "Due today", clock.Today())

	template, err := store.ActiveTemplate(userID, models.BucketDueToday.TemplateAliases())
	require.NoError(t, err)
	require.NotNil(t, template)

	store.logs = append(store.logs, models.MessageLog{
		UserID:     userID,
		ClientID:   client.ID,
		TemplateID: template.ID,
		Status:     models.LogStatusSent,
		SentAt:     time.Now().UTC(),
	})

	svc := NewReminderService(store, clock, sink)
	processed, warnings, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Zero(t, processed)
	assert.Empty(t, sink.jobs)
}

func TestProcessUserRemindersFailedAttemptDoesNotBlockRetry(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	allBucketTemplates(store, userID)
	client := addClient(store, userID, "Due today", clock.Today())

	template, err := store.ActiveTemplate(userID, models.BucketDueToday.TemplateAliases())
	require.NoError(t, err)

	// A failed delivery earlier today must not satisfy the dedup check.
	store.logs = append(store.logs, models.MessageLog{
		UserID:     userID,
		ClientID:   client.ID,
		TemplateID: template.ID,
		Status:     models.LogStatusFailed,
		SentAt:     time.Now().UTC(),
	})

	svc := NewReminderService(store, clock, sink)
	processed, _, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
}

func TestProcessUserRemindersYesterdaysSendDoesNotCount(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	allBucketTemplates(store, userID)
	client := addClient(store, userID, "Still overdue", clock.Today().AddDate(0, 0, -2))

	template, err := store.ActiveTemplate(userID, models.BucketOverdue.TemplateAliases())
	require.NoError(t, err)

	store.logs = append(store.logs, models.MessageLog{
		UserID:     userID,
		ClientID:   client.ID,
		TemplateID: template.ID,
		Status:     models.LogStatusSent,
		SentAt:     clock.StartOfTodayUTC().Add(-2 * time.Hour),
	})

	svc := NewReminderService(store, clock, sink)
	processed, _, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Equal(t, 1, processed, "overdue clients get one reminder per day until resolved")
}

func TestProcessUserRemindersMissingTemplateWarnsOncePerBucket(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	// Only the due-today template exists.
	addTemplate(store, userID, models.BucketDueToday.CanonicalTemplateType(), "Hoje, {nome}!")
	addClient(store, userID, "Due today", clock.Today())
	addClient(store, userID, "Overdue A", clock.Today().AddDate(0, 0, -1))
	addClient(store, userID, "Overdue B", clock.Today().AddDate(0, 0, -5))

	svc := NewReminderService(store, clock, sink)
	processed, warnings, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	require.Len(t, warnings, 1, "one aggregated warning for the whole bucket")
	assert.Contains(t, warnings[0], "overdue")
	assert.Contains(t, warnings[0], "2 client(s)")
}

func TestProcessUserRemindersResolvesLegacyAlias(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	addTemplate(store, userID, "user_reminder_1_day", "Amanha, {nome}!")
	addClient(store, userID, "Due tomorrow", clock.Today().AddDate(0, 0, 1))

	svc := NewReminderService(store, clock, sink)
	processed, warnings, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, processed)
	require.Len(t, sink.jobs, 1)
	assert.Equal(t, "user_reminder_1_day", sink.jobs[0].TemplateType)
}

func TestProcessUserRemindersCanonicalTemplateWinsOverAlias(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	addTemplate(store, userID, "user_reminder_due_date", "legado")
	addTemplate(store, userID, "reminder_due_date", "canonico")
	addClient(store, userID, "Due today", clock.Today())

	svc := NewReminderService(store, clock, sink)
	_, _, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	require.Len(t, sink.jobs, 1)
	assert.Equal(t, "reminder_due_date", sink.jobs[0].TemplateType)
}

func TestProcessUserRemindersIgnoresOptedOutAndInactiveClients(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{}
	userID := uuid.New()

	allBucketTemplates(store, userID)

	optedOut := addClient(store, userID, "Opted out", clock.Today())
	for i := range store.clients {
		if store.clients[i].ID == optedOut.ID {
			store.clients[i].AutoRemindersEnabled = false
		}
	}
	inactive := addClient(store, userID, "Inactive", clock.Today())
	for i := range store.clients {
		if store.clients[i].ID == inactive.ID {
			store.clients[i].Status = models.ClientStatusInactive
		}
	}

	svc := NewReminderService(store, clock, sink)
	processed, _, err := svc.ProcessUserReminders(userID)

	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestManualRunWhileTickJobsStillQueuedSendsOnce(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	userID := uuid.New()

	allBucketTemplates(store, userID)
	addClient(store, userID, "Due today", clock.Today())

	sender := &fakeSender{}
	pool := NewSenderPool(store, sender, testPoolConfig())
	svc := NewReminderService(store, clock, pool)

	// Scheduled pass enqueues; the pool has not started, so the job is still
	// queued (no "sent" ledger row yet) when the manual trigger fires.
	processed, warnings, err := svc.ProcessUserReminders(userID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, processed)

	_, warnings = svc.RunNow(userID)
	assert.Empty(t, warnings)

	pool.Start(context.Background())
	pool.Stop()

	logs := store.logCopies()
	require.Len(t, logs, 1, "at most one delivery per client per template per day")
	assert.Equal(t, models.LogStatusSent, logs[0].Status)
	assert.Equal(t, 1, sender.attemptCount())
}

func TestRunNowReportsQueueFullAsWarning(t *testing.T) {
	store := newMemoryStore()
	clock := testClock(t)
	sink := &captureSink{full: true}
	userID := uuid.New()

	allBucketTemplates(store, userID)
	addClient(store, userID, "Due today", clock.Today())

	svc := NewReminderService(store, clock, sink)
	processed, warnings := svc.RunNow(userID)

	assert.Zero(t, processed)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "queue full")
}
