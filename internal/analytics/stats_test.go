package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	analyses []Analysis
	err      error
}

func (f *fakeStore) ListAnalyses(ctx context.Context, username string) ([]Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.analyses, nil
}

func analysisAt(t time.Time, hasStress bool) Analysis {
	return Analysis{
		AnalysisID: uuid.New(),
		Username:   "alice",
		HasStress:  hasStress,
		CreatedAt:  t,
	}
}

func TestWindowStatsSevenDayScenario(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{analyses: []Analysis{
		analysisAt(now.AddDate(0, 0, -1), true),
		analysisAt(now.AddDate(0, 0, -3), false),
		analysisAt(now.AddDate(0, 0, -10), true),
	}}

	stats, err := NewAggregator(store).WindowStats(context.Background(), "alice", now, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 2 || stats.StressCount != 1 || stats.Percentage != 50 {
		t.Fatalf("expected {2 1 50}, got {%d %d %d}", stats.Total, stats.StressCount, stats.Percentage)
	}
}

func TestHistoryStatsFullScenario(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	analyses := []Analysis{
		analysisAt(now.AddDate(0, 0, -1), true),
		analysisAt(now.AddDate(0, 0, -3), false),
		analysisAt(now.AddDate(0, 0, -10), true),
	}

	stats := HistoryStats(analyses)
	if stats.Total != 3 || stats.StressCount != 2 || stats.Percentage != 67 {
		t.Fatalf("expected {3 2 67}, got {%d %d %d}", stats.Total, stats.StressCount, stats.Percentage)
	}
}

func TestHistoryStatsEmptySet(t *testing.T) {
	stats := HistoryStats(nil)
	if stats.Total != 0 || stats.StressCount != 0 || stats.Percentage != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestHistoryStatsInvariants(t *testing.T) {
	now := time.Now()
	sets := [][]Analysis{
		{analysisAt(now, true)},
		{analysisAt(now, false), analysisAt(now, false)},
		{analysisAt(now, true), analysisAt(now, true), analysisAt(now, false)},
	}
	for _, set := range sets {
		stats := HistoryStats(set)
		if stats.StressCount > stats.Total {
			t.Fatalf("stressCount %d exceeds total %d", stats.StressCount, stats.Total)
		}
		if stats.Percentage < 0 || stats.Percentage > 100 {
			t.Fatalf("percentage %d out of range", stats.Percentage)
		}
	}
}

func TestLatestPicksNewest(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	newest := analysisAt(now, true)
	analyses := []Analysis{
		analysisAt(now.AddDate(0, 0, -2), false),
		newest,
		analysisAt(now.AddDate(0, 0, -1), false),
	}

	latest, ok := Latest(analyses)
	if !ok {
		t.Fatal("expected a latest analysis")
	}
	if latest.AnalysisID != newest.AnalysisID {
		t.Fatalf("expected latest %s, got %s", newest.AnalysisID, latest.AnalysisID)
	}
}

func TestLatestTieKeepsInsertionOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	first := analysisAt(now, true)
	second := analysisAt(now, false)

	latest, ok := Latest([]Analysis{first, second})
	if !ok {
		t.Fatal("expected a latest analysis")
	}
	if latest.AnalysisID != first.AnalysisID {
		t.Fatal("expected tie to keep the earliest-inserted record")
	}
}

func TestAggregatorLatestNoAnalyses(t *testing.T) {
	agg := NewAggregator(&fakeStore{})
	_, err := agg.Latest(context.Background(), "alice")
	if err != ErrNoAnalyses {
		t.Fatalf("expected ErrNoAnalyses, got %v", err)
	}
}
