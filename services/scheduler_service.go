// services/scheduler_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"streampro-backend/config"
	"streampro-backend/models"
	"streampro-backend/utils"
)

// Scheduler owns the tick loop. Every tick it walks the active accounts,
// checks whether each account's configured times have arrived today without
// having run yet (catch-up aware), and hands due accounts to the reminder
// and report services. Sends never happen on the tick goroutine; they go
// through the sender pool.
type Scheduler struct {
	store     Store
	reminders *ReminderService
	reports   *ReportService
	payments  *PaymentService
	notifier  Notifier
	clock     *utils.Clock
	settings  config.Settings
	cron      *cron.Cron
}

func NewScheduler(
	store Store,
	reminders *ReminderService,
	reports *ReportService,
	payments *PaymentService,
	notifier Notifier,
	clock *utils.Clock,
	settings config.Settings,
) *Scheduler {
	return &Scheduler{
		store:     store,
		reminders: reminders,
		reports:   reports,
		payments:  payments,
		notifier:  notifier,
		clock:     clock,
		settings:  settings,
	}
}

func (s *Scheduler) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if _, err := c.AddFunc(every(s.settings.TickInterval), s.checkReminderTimes); err != nil {
		return fmt.Errorf("register reminder tick: %w", err)
	}
	if _, err := c.AddFunc(every(s.settings.DueDateInterval), s.checkDueDates); err != nil {
		return fmt.Errorf("register due-date check: %w", err)
	}
	if s.payments != nil {
		if _, err := c.AddFunc(every(s.settings.PaymentInterval), s.payments.CheckPending); err != nil {
			return fmt.Errorf("register payment poll: %w", err)
		}
	}

	c.Start()
	s.cron = c
	log.Printf("Scheduler started (tick %s, timezone %s)", s.settings.TickInterval, s.clock.Location())
	return nil
}

// Stop halts the ticker and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped")
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

// dueForRun implements the catch-up rule: run when the scheduled
// time-of-day has passed and the last recorded run was not today. A process
// that was down at 09:00 still runs on its first tick after restart; a
// second tick the same day does nothing.
func dueForRun(now time.Time, scheduledMinute int, lastRun *time.Time) bool {
	if utils.MinutesOfDay(now) < scheduledMinute {
		return false
	}
	if lastRun == nil {
		return true
	}
	return !utils.SameDate(*lastRun, now)
}

func (s *Scheduler) checkReminderTimes() {
	now := s.clock.Now()
	today := s.clock.Today()

	users, err := s.store.ActiveUsers()
	if err != nil {
		log.Printf("Failed to fetch users: %v", err)
		return
	}

	for _, user := range users {
		s.checkTrialExpiration(user, today)

		settings, err := s.store.ScheduleSettingsFor(user.ID)
		if err != nil {
			log.Printf("User %s: failed to load schedule settings: %v", user.ID, err)
			continue
		}
		if !settings.IsActive || !settings.AutoSendEnabled {
			continue
		}

		s.runMorningReminders(user, settings, now, today)
		s.runDailyReport(user, settings, now, today)
	}
}

func (s *Scheduler) runMorningReminders(user models.User, settings *models.UserScheduleSettings, now, today time.Time) {
	scheduled, err := utils.ParseClockTime(settings.MorningReminderTime)
	if err != nil {
		log.Printf("User %s: %v; skipping reminders", user.ID, err)
		return
	}
	if !dueForRun(now, scheduled, settings.LastMorningRun) {
		return
	}

	processed, warnings, err := s.reminders.ProcessUserReminders(user.ID)
	for _, warning := range warnings {
		log.Printf("User %s: %s", user.ID, warning)
	}
	if err != nil {
		// Pass aborted; last_morning_run stays unset so the next tick retries.
		log.Printf("User %s: reminder pass failed: %v", user.ID, err)
		return
	}

	// Record the run before any send outcome is known: "ran today" means
	// classification happened, so a transient send failure cannot trigger
	// a second sweep mid-day.
	if err := s.store.MarkMorningRun(settings.ID, today); err != nil {
		log.Printf("User %s: failed to record morning run: %v", user.ID, err)
		return
	}
	log.Printf("Morning reminders executed for user %s (%d enqueued)", user.ID, processed)
}

func (s *Scheduler) runDailyReport(user models.User, settings *models.UserScheduleSettings, now, today time.Time) {
	scheduled, err := utils.ParseClockTime(settings.DailyReportTime)
	if err != nil {
		log.Printf("User %s: %v; skipping report", user.ID, err)
		return
	}
	if !dueForRun(now, scheduled, settings.LastReportRun) {
		return
	}

	if err := s.reports.SendDailyReport(user); err != nil {
		log.Printf("User %s: daily report failed: %v", user.ID, err)
		return
	}
	if err := s.store.MarkReportRun(settings.ID, today); err != nil {
		log.Printf("User %s: failed to record report run: %v", user.ID, err)
		return
	}
	log.Printf("Daily report sent to user %s", user.ID)
}

// checkTrialExpiration deactivates accounts whose trial ran out. Piggybacks
// on the reminder tick so trial accounts stop sending the same day.
func (s *Scheduler) checkTrialExpiration(user models.User, today time.Time) {
	if !user.IsTrial {
		return
	}

	end := user.CreatedAt.AddDate(0, 0, s.settings.TrialPeriodDays)
	if user.TrialEndsAt != nil {
		end = *user.TrialEndsAt
	}
	if !utils.BeginningOfDay(end.In(s.clock.Location())).Before(today) {
		return
	}

	if err := s.store.DeactivateUser(user.ID); err != nil {
		log.Printf("User %s: failed to deactivate expired trial: %v", user.ID, err)
		return
	}
	log.Printf("Trial expired; user %s deactivated", user.ID)

	if s.notifier != nil {
		text := "Seu periodo de teste terminou. Assine o plano para reativar os lembretes automaticos."
		if err := s.notifier.Notify(user.ID, text); err != nil {
			log.Printf("User %s: trial expiry notification failed: %v", user.ID, err)
		}
	}
}

// checkDueDates is the hourly housekeeping pass: clients overdue past the
// grace window stop being active (and therefore stop receiving reminders).
func (s *Scheduler) checkDueDates() {
	cutoff := s.clock.Today().AddDate(0, 0, -s.settings.OverdueGraceDays)
	count, err := s.store.DeactivateClientsOverdueSince(cutoff)
	if err != nil {
		log.Printf("Due-date housekeeping failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Marked %d client(s) inactive (overdue beyond %d days)", count, s.settings.OverdueGraceDays)
	}
}
