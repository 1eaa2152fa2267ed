package analytics

import (
	"testing"
	"time"
)

func TestWeeklyTrendsBucketsByCalendarWeek(t *testing.T) {
	// 2025-03-02 is a Sunday, so the 3rd (Mon) and 8th (Sat) share its
	// week while the 9th opens the next one.
	analyses := []Analysis{
		analysisAt(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), true),
		analysisAt(time.Date(2025, 3, 8, 23, 59, 0, 0, time.UTC), false),
		analysisAt(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), true),
	}

	trends := WeeklyTrends(analyses)
	if len(trends) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(trends))
	}

	first, second := trends[0], trends[1]
	if first.Week != "2025-3-2" {
		t.Fatalf("expected first bucket 2025-3-2, got %s", first.Week)
	}
	if second.Week != "2025-3-9" {
		t.Fatalf("expected second bucket 2025-3-9, got %s", second.Week)
	}
	if first.Total != 2 || first.StressDetected != 1 || first.Percentage != 50 {
		t.Fatalf("unexpected first bucket %+v", first)
	}
	if second.Total != 1 || second.StressDetected != 1 || second.Percentage != 100 {
		t.Fatalf("unexpected second bucket %+v", second)
	}
}

func TestWeeklyTrendsPartitionsEveryAnalysis(t *testing.T) {
	base := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC) // Sunday
	var analyses []Analysis
	for day := 0; day < 30; day++ {
		analyses = append(analyses, analysisAt(base.AddDate(0, 0, day), day%3 == 0))
	}

	trends := WeeklyTrends(analyses)

	total, stressed := 0, 0
	seen := make(map[string]bool)
	for _, bucket := range trends {
		if bucket.Total < 1 {
			t.Fatalf("bucket %s has zero analyses", bucket.Week)
		}
		if seen[bucket.Week] {
			t.Fatalf("duplicate bucket %s", bucket.Week)
		}
		seen[bucket.Week] = true
		total += bucket.Total
		stressed += bucket.StressDetected
	}
	if total != len(analyses) {
		t.Fatalf("buckets cover %d analyses, want %d", total, len(analyses))
	}
	wantStressed := 0
	for _, an := range analyses {
		if an.HasStress {
			wantStressed++
		}
	}
	if stressed != wantStressed {
		t.Fatalf("buckets count %d stressed analyses, want %d", stressed, wantStressed)
	}
}

func TestWeeklyTrendsSortedAscending(t *testing.T) {
	analyses := []Analysis{
		analysisAt(time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC), false),
		analysisAt(time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), true),
		analysisAt(time.Date(2025, 4, 6, 10, 0, 0, 0, time.UTC), false),
	}

	trends := WeeklyTrends(analyses)
	for i := 1; i < len(trends); i++ {
		if !trends[i-1].start.Before(trends[i].start) {
			t.Fatalf("buckets out of order: %s before %s", trends[i-1].Week, trends[i].Week)
		}
	}
}

func TestWeekStartLandsOnSunday(t *testing.T) {
	cases := []time.Time{
		time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),   // Sunday itself
		time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC), // midweek
		time.Date(2025, 3, 8, 23, 59, 59, 0, time.UTC),
	}
	want := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		got := weekStart(c)
		if !got.Equal(want) {
			t.Fatalf("weekStart(%s) = %s, want %s", c, got, want)
		}
		if got.Weekday() != time.Sunday {
			t.Fatalf("weekStart(%s) fell on %s", c, got.Weekday())
		}
	}
}
