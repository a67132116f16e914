// services/reminder_service.go
package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"streampro-backend/models"
	"streampro-backend/utils"
)

// ReminderService runs one classification pass for one account: bucket the
// account's clients by due date, resolve a template per bucket, skip
// anything already delivered today, and enqueue the rest.
type ReminderService struct {
	store Store
	clock *utils.Clock
	sink  JobSink
}

func NewReminderService(store Store, clock *utils.Clock, sink JobSink) *ReminderService {
	return &ReminderService{store: store, clock: clock, sink: sink}
}

// ProcessUserReminders classifies every remindable client of the user and
// enqueues one send job per (client, bucket) not yet delivered today.
// It returns the number of jobs enqueued and per-bucket warnings. A non-nil
// error means the pass aborted on a persistence failure and must not be
// recorded as run.
func (s *ReminderService) ProcessUserReminders(userID uuid.UUID) (int, []string, error) {
	today := s.clock.Today()
	dayStart := s.clock.StartOfTodayUTC()

	clients, err := s.store.RemindableClients(userID)
	if err != nil {
		return 0, nil, fmt.Errorf("load clients: %w", err)
	}

	byBucket := make(map[models.Bucket][]models.Client)
	for _, client := range clients {
		bucket := ClassifyDueDate(client.DueDate, today)
		if bucket == models.BucketNone {
			continue
		}
		byBucket[bucket] = append(byBucket[bucket], client)
	}

	var warnings []string
	processed := 0

	for _, bucket := range models.AllBuckets {
		bucketClients := byBucket[bucket]
		if len(bucketClients) == 0 {
			continue
		}

		template, err := s.store.ActiveTemplate(userID, bucket.TemplateAliases())
		if err != nil {
			return processed, warnings, fmt.Errorf("resolve template for %s: %w", bucket, err)
		}
		if template == nil {
			// One aggregated warning per bucket, not one per client.
			warnings = append(warnings, fmt.Sprintf(
				"no active %s template; skipped %d client(s)", bucket, len(bucketClients)))
			continue
		}

		for _, client := range bucketClients {
			sent, err := s.store.SentToday(userID, client.ID, template.ID, dayStart)
			if err != nil {
				return processed, warnings, fmt.Errorf("dedup check for client %s: %w", client.ID, err)
			}
			if sent {
				continue
			}

			job := SendJob{
				UserID:       userID,
				ClientID:     client.ID,
				TemplateID:   template.ID,
				TemplateType: template.TemplateType,
				To:           client.PhoneNumber,
				Body:         RenderTemplate(template.Content, client),
			}
			if !s.sink.Enqueue(job) {
				warnings = append(warnings, fmt.Sprintf(
					"send queue full; dropped %s reminder for client %s", bucket, client.ID))
				continue
			}
			processed++
		}
	}

	return processed, warnings, nil
}

// RunNow is the manual trigger exposed to the API. It performs one
// classification pass outside the schedule; the dedup ledger still applies,
// so clients already reminded today are not reminded twice.
func (s *ReminderService) RunNow(userID uuid.UUID) (int, []string) {
	processed, warnings, err := s.ProcessUserReminders(userID)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	for _, warning := range warnings {
		log.Printf("RunNow user %s: %s", userID, warning)
	}
	return processed, warnings
}
