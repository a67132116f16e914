// services/report_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"streampro-backend/models"
	"streampro-backend/utils"
)

// ReportService builds and delivers the daily due-date summary to the
// account owner.
type ReportService struct {
	store    Store
	clock    *utils.Clock
	notifier Notifier
}

func NewReportService(store Store, clock *utils.Clock, notifier Notifier) *ReportService {
	return &ReportService{store: store, clock: clock, notifier: notifier}
}

// SendDailyReport sends the summary for one user. Nothing is sent when no
// client is due or overdue; that still counts as a successful run.
func (r *ReportService) SendDailyReport(user models.User) error {
	clients, err := r.store.ActiveClients(user.ID)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}

	today := r.clock.Today()
	byBucket := make(map[models.Bucket][]models.Client)
	for _, client := range clients {
		bucket := ClassifyDueDate(client.DueDate, today)
		if bucket == models.BucketNone {
			continue
		}
		byBucket[bucket] = append(byBucket[bucket], client)
	}
	if len(byBucket) == 0 {
		return nil
	}

	return r.notifier.Notify(user.ID, BuildDailyReport(byBucket, today))
}

// BuildDailyReport renders the operator summary: overdue first, then due
// today, tomorrow and in two days, capped at five names per section.
func BuildDailyReport(byBucket map[models.Bucket][]models.Client, today time.Time) string {
	var b strings.Builder
	b.WriteString("Relatorio diario de vencimentos - ")
	b.WriteString(today.Format("02/01/2006"))
	b.WriteString("\n")

	sections := []struct {
		bucket models.Bucket
		label  string
	}{
		{models.BucketOverdue, "em atraso"},
		{models.BucketDueToday, "vencem hoje"},
		{models.BucketOneDayBefore, "vencem amanha"},
		{models.BucketTwoDaysBefore, "vencem em 2 dias"},
	}

	for _, section := range sections {
		clients := byBucket[section.bucket]
		if len(clients) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%d cliente(s) %s:\n", len(clients), section.label)
		for i, client := range clients {
			if i == 5 {
				fmt.Fprintf(&b, "- ... e mais %d cliente(s)\n", len(clients)-5)
				break
			}
			fmt.Fprintf(&b, "- %s (R$ %.2f)\n", client.Name, client.PlanPrice)
		}
	}

	return b.String()
}
