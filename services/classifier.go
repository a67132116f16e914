// services/classifier.go
package services

import (
	"time"

	"streampro-backend/models"
	"streampro-backend/utils"
)

// ClassifyDueDate maps a client's due date to a reminder bucket for the
// given business date. Overdue clients classify every day until they are
// paid or deactivated; everything further than two days out gets nothing.
// The comparison is calendar-based, so a due date parsed as a UTC midnight
// and a "today" in the business timezone classify correctly.
func ClassifyDueDate(dueDate, today time.Time) models.Bucket {
	switch days := utils.DaysBetween(today, dueDate); days {
	case 2:
		return models.BucketTwoDaysBefore
	case 1:
		return models.BucketOneDayBefore
	case 0:
		return models.BucketDueToday
	default:
		if days < 0 {
			return models.BucketOverdue
		}
		return models.BucketNone
	}
}
