package models

// Bucket is a canonical reminder category, determined by the day distance
// between today and a client's due date. Resolution and classification work
// only on Bucket values; the legacy template_type literals that accumulated
// in the database over time are mapped here and nowhere else.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketTwoDaysBefore
	BucketOneDayBefore
	BucketDueToday
	BucketOverdue
)

// AllBuckets in the order a classification pass processes them.
var AllBuckets = []Bucket{
	BucketTwoDaysBefore,
	BucketOneDayBefore,
	BucketDueToday,
	BucketOverdue,
}

func (b Bucket) String() string {
	switch b {
	case BucketTwoDaysBefore:
		return "two_days_before"
	case BucketOneDayBefore:
		return "one_day_before"
	case BucketDueToday:
		return "due_today"
	case BucketOverdue:
		return "overdue"
	default:
		return "none"
	}
}

// TemplateAliases returns the ordered list of template_type literals that
// resolve to this bucket, canonical name first. Older installs stored user
// templates with a "user_" prefix; both spellings must keep working.
func (b Bucket) TemplateAliases() []string {
	switch b {
	case BucketTwoDaysBefore:
		return []string{"reminder_2_days", "user_reminder_2_days"}
	case BucketOneDayBefore:
		return []string{"reminder_1_day", "user_reminder_1_day"}
	case BucketDueToday:
		return []string{"reminder_due_date", "user_reminder_due_date"}
	case BucketOverdue:
		return []string{"reminder_overdue", "user_reminder_overdue"}
	default:
		return nil
	}
}

// CanonicalTemplateType is the template_type new templates are written with.
func (b Bucket) CanonicalTemplateType() string {
	aliases := b.TemplateAliases()
	if len(aliases) == 0 {
		return ""
	}
	return aliases[0]
}
