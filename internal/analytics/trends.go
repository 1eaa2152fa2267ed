package analytics

import (
	"sort"
	"time"
)

// weekStartDay fixes the calendar-week boundary used for trend bucketing.
// The week identity is derived purely from each analysis's own timestamp in
// its own location; changing this constant changes every bucket key.
const weekStartDay = time.Sunday

// WeeklyBucket aggregates the analyses of one calendar week. Week is the
// date the week starts on, formatted year-month-day without zero padding.
type WeeklyBucket struct {
	Week           string `json:"week"`
	Total          int    `json:"total"`
	StressDetected int    `json:"stressDetected"`
	Percentage     int    `json:"percentage"`

	start time.Time
}

// WeeklyTrends buckets the full analysis set into calendar weeks starting on
// weekStartDay and returns the buckets sorted ascending by week start.
// Every analysis lands in exactly one bucket; a bucket exists only when at
// least one analysis maps into it, so Total is always >= 1.
func WeeklyTrends(analyses []Analysis) []WeeklyBucket {
	byWeek := make(map[string]*WeeklyBucket)

	for _, an := range analyses {
		start := weekStart(an.CreatedAt)
		key := start.Format("2006-1-2")

		bucket, ok := byWeek[key]
		if !ok {
			bucket = &WeeklyBucket{Week: key, start: start}
			byWeek[key] = bucket
		}
		bucket.Total++
		if an.HasStress {
			bucket.StressDetected++
		}
	}

	trends := make([]WeeklyBucket, 0, len(byWeek))
	for _, bucket := range byWeek {
		bucket.Percentage = roundPercentage(bucket.StressDetected, bucket.Total)
		trends = append(trends, *bucket)
	}

	sort.Slice(trends, func(i, j int) bool {
		return trends[i].start.Before(trends[j].start)
	})
	return trends
}

// weekStart truncates t to midnight of the weekStartDay that begins its
// calendar week, in t's own location.
func weekStart(t time.Time) time.Time {
	daysBack := int(t.Weekday()) - int(weekStartDay)
	if daysBack < 0 {
		daysBack += 7
	}
	start := t.AddDate(0, 0, -daysBack)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}
