// services/sender_service.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"

	"streampro-backend/models"
)

// SendJob is one outbound reminder: recipient, rendered body, and the
// context needed to write the ledger entry afterwards. Jobs live only in
// memory; one lost in a crash is regenerated by the next classification
// pass because no "sent" ledger row exists for it.
type SendJob struct {
	UserID       uuid.UUID
	ClientID     uuid.UUID
	TemplateID   uuid.UUID
	TemplateType string
	To           string
	Body         string
}

// JobSink is where a classification pass hands off jobs. The sender pool
// implements it; tests use a capture sink.
type JobSink interface {
	Enqueue(job SendJob) bool
}

type SenderPoolConfig struct {
	Workers     int
	QueueSize   int
	RatePerSec  int
	MaxRetries  int
	RetryDelay  time.Duration
	SendTimeout time.Duration
}

// SenderPool drains a bounded queue of send jobs with a fixed set of
// workers. A token ticker enforces the minimum inter-send delay across all
// workers; each job is retried with backoff and produces exactly one
// ledger row. A (client, template) pair has at most one job queued or in
// flight at a time, so a manual trigger racing the scheduled pass cannot
// double-send before the ledger row lands.
type SenderPool struct {
	jobs    chan SendJob
	store   Store
	sender  Sender
	cfg     SenderPoolConfig
	limiter *time.Ticker
	wg      sync.WaitGroup

	mu       sync.Mutex
	inflight map[inflightKey]struct{}
}

type inflightKey struct {
	clientID   uuid.UUID
	templateID uuid.UUID
}

func NewSenderPool(store Store, sender Sender, cfg SenderPoolConfig) *SenderPool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.RatePerSec < 1 {
		cfg.RatePerSec = 1
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &SenderPool{
		jobs:     make(chan SendJob, cfg.QueueSize),
		store:    store,
		sender:   sender,
		cfg:      cfg,
		limiter:  time.NewTicker(time.Second / time.Duration(cfg.RatePerSec)),
		inflight: make(map[inflightKey]struct{}),
	}
}

func (p *SenderPool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	log.Printf("Sender pool started (%d workers, queue %d, %d msg/s)",
		p.cfg.Workers, p.cfg.QueueSize, p.cfg.RatePerSec)
}

// Enqueue offers a job to the queue without blocking the caller. A job for
// a (client, template) already queued or in flight is absorbed: the pending
// job covers it. A full queue drops the job; the dedup ledger has no "sent"
// row for it, so the next pass picks the client up again.
func (p *SenderPool) Enqueue(job SendJob) bool {
	key := inflightKey{clientID: job.ClientID, templateID: job.TemplateID}

	p.mu.Lock()
	if _, pending := p.inflight[key]; pending {
		p.mu.Unlock()
		return true
	}
	p.inflight[key] = struct{}{}
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		return true
	default:
		p.release(key)
		return false
	}
}

func (p *SenderPool) release(key inflightKey) {
	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
}

// Stop drains the queue and waits for in-flight sends to finish.
func (p *SenderPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.limiter.Stop()
	log.Println("Sender pool stopped")
}

func (p *SenderPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for job := range p.jobs {
		<-p.limiter.C
		p.process(ctx, job)
	}
}

func (p *SenderPool) process(ctx context.Context, job SendJob) {
	// Released only after the ledger write below, so a duplicate enqueued
	// mid-flight is absorbed and a later pass sees the committed outcome.
	defer p.release(inflightKey{clientID: job.ClientID, templateID: job.TemplateID})

	strategy := retry.Strategy{
		Attempts: p.cfg.MaxRetries,
		Delay:    p.cfg.RetryDelay,
		Backoff:  2,
	}

	sendErr := retry.DoContext(ctx, strategy, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.SendTimeout)
		defer cancel()
		return p.sender.SendMessage(attemptCtx, job.To, job.Body, job.UserID)
	})

	now := time.Now().UTC()
	entry := &models.MessageLog{
		UserID:         job.UserID,
		ClientID:       job.ClientID,
		TemplateID:     job.TemplateID,
		TemplateType:   job.TemplateType,
		RecipientPhone: job.To,
		MessageContent: job.Body,
		Status:         models.LogStatusSent,
		SentAt:         now,
	}
	if sendErr != nil {
		entry.Status = models.LogStatusFailed
		entry.ErrorMessage = sendErr.Error()
		log.Printf("Send to %s failed after %d attempts: %v", job.To, p.cfg.MaxRetries, sendErr)
	}

	if err := p.store.AppendLog(entry); err != nil {
		log.Printf("Failed to write message log for client %s: %v", job.ClientID, err)
		return
	}
	if sendErr == nil {
		if err := p.store.MarkReminderSent(job.ClientID, now); err != nil {
			log.Printf("Failed to stamp last reminder for client %s: %v", job.ClientID, err)
		}
	}
}
