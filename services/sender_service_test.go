package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampro-backend/models"
)

func testPoolConfig() SenderPoolConfig {
	return SenderPoolConfig{
		Workers:     2,
		QueueSize:   16,
		RatePerSec:  1000,
		MaxRetries:  3,
		RetryDelay:  time.Millisecond,
		SendTimeout: time.Second,
	}
}

func testJob() SendJob {
	return SendJob{
		UserID:       uuid.New(),
		ClientID:     uuid.New(),
		TemplateID:   uuid.New(),
		TemplateType: "reminder_due_date",
		To:           "+5511988887777",
		Body:         "Ola!",
	}
}

func TestSenderPoolDeliversAndWritesLedger(t *testing.T) {
	store := newMemoryStore()
	sender := &fakeSender{}
	pool := NewSenderPool(store, sender, testPoolConfig())

	job := testJob()
	pool.Start(context.Background())
	require.True(t, pool.Enqueue(job))
	pool.Stop()

	logs := store.logCopies()
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSent, logs[0].Status)
	assert.Equal(t, job.ClientID, logs[0].ClientID)
	assert.Equal(t, job.Body, logs[0].MessageContent)
	assert.Empty(t, logs[0].ErrorMessage)

	assert.Equal(t, 1, sender.attemptCount())
	_, stamped := store.reminderStamps[job.ClientID]
	assert.True(t, stamped, "successful send must stamp last_reminder_sent")
}

func TestSenderPoolRetriesThenLogsFailure(t *testing.T) {
	store := newMemoryStore()
	sender := &fakeSender{failures: -1} // never succeeds
	pool := NewSenderPool(store, sender, testPoolConfig())

	job := testJob()
	pool.Start(context.Background())
	require.True(t, pool.Enqueue(job))
	pool.Stop()

	assert.Equal(t, 3, sender.attemptCount(), "one attempt per retry budget slot")

	logs := store.logCopies()
	require.Len(t, logs, 1, "exactly one ledger row per job regardless of retries")
	assert.Equal(t, models.LogStatusFailed, logs[0].Status)
	assert.NotEmpty(t, logs[0].ErrorMessage)

	_, stamped := store.reminderStamps[job.ClientID]
	assert.False(t, stamped, "failed job must not stamp last_reminder_sent")
}

func TestSenderPoolRecoversWithinRetryBudget(t *testing.T) {
	store := newMemoryStore()
	sender := &fakeSender{failures: 2} // third attempt succeeds
	pool := NewSenderPool(store, sender, testPoolConfig())

	pool.Start(context.Background())
	require.True(t, pool.Enqueue(testJob()))
	pool.Stop()

	assert.Equal(t, 3, sender.attemptCount())

	logs := store.logCopies()
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSent, logs[0].Status)
}

func TestSenderPoolAbsorbsDuplicateQueuedJob(t *testing.T) {
	store := newMemoryStore()
	sender := &fakeSender{}

	// Pool not started yet, so the first job is still sitting in the queue
	// when its duplicate arrives.
	pool := NewSenderPool(store, sender, testPoolConfig())

	job := testJob()
	require.True(t, pool.Enqueue(job))
	require.True(t, pool.Enqueue(job), "duplicate is absorbed, not rejected")

	other := testJob()
	require.True(t, pool.Enqueue(other))

	pool.Start(context.Background())
	pool.Stop()

	assert.Len(t, store.logCopies(), 2, "one ledger row per distinct job")
	assert.Equal(t, 2, sender.attemptCount())
}

func TestSenderPoolEnqueueRejectsWhenFull(t *testing.T) {
	store := newMemoryStore()
	sender := &fakeSender{}
	cfg := testPoolConfig()
	cfg.QueueSize = 1

	// Pool not started: nothing drains the queue.
	pool := NewSenderPool(store, sender, cfg)

	assert.True(t, pool.Enqueue(testJob()))
	assert.False(t, pool.Enqueue(testJob()), "full queue must reject instead of blocking")
}

func TestSenderPoolProcessesAllQueuedJobs(t *testing.T) {
	store := newMemoryStore()
	sender := &fakeSender{}
	pool := NewSenderPool(store, sender, testPoolConfig())

	pool.Start(context.Background())
	for i := 0; i < 10; i++ {
		require.True(t, pool.Enqueue(testJob()))
	}
	pool.Stop()

	assert.Len(t, store.logCopies(), 10)
}
