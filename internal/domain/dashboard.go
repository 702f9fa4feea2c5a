package domain

import "time"

// Dashboard bucket intervals.
const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
)

// DashboardSummary aggregates headline counts for the admin dashboard.
type DashboardSummary struct {
	UsersByRole          map[string]int `json:"users_by_role"`
	Companies            int            `json:"companies"`
	JobsByStatus         map[string]int `json:"jobs_by_status"`
	Candidates           int            `json:"candidates"`
	ApplicationsByStatus map[string]int `json:"applications_by_status"`
}

// BucketCount is the number of items that fall into one time bucket.
type BucketCount struct {
	BucketStart time.Time `json:"bucket_start"`
	Count       int       `json:"count"`
}

// BucketStart truncates t (in UTC) to the start of its bucket. Weeks start on Monday.
func BucketStart(t time.Time, interval string) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch interval {
	case IntervalWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case IntervalMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// NextBucket returns the start of the bucket following start.
func NextBucket(start time.Time, interval string) time.Time {
	switch interval {
	case IntervalWeek:
		return start.AddDate(0, 0, 7)
	case IntervalMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}
