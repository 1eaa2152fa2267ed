/*
Package analytics derives stress statistics from a user's recorded eye
analyses. Everything in this package is a pure function of the analysis set
it is handed plus an explicit reference instant; there is no caching and no
hidden state, so identical inputs always produce identical output.
*/
package analytics

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrNoAnalyses signals that a user has no recorded analyses. Callers are
// expected to branch on this with errors.Is rather than inspect messages.
var ErrNoAnalyses = errors.New("no analyses found for user")

// Analysis is a single immutable stress observation. Records are appended by
// the analysis endpoints and never mutated afterwards.
type Analysis struct {
	AnalysisID uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	HasStress  bool      `json:"hasStress"`
	ImageURL   *string   `json:"imageUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ObservationStore is the read side of the analysis store. The concrete
// implementation lives in internal/database; tests inject in-memory fakes.
type ObservationStore interface {
	ListAnalyses(ctx context.Context, username string) ([]Analysis, error)
}

// Stats summarises stress frequency over a set of analyses.
type Stats struct {
	Total       int `json:"total"`
	StressCount int `json:"stressCount"`
	Percentage  int `json:"percentage"`
}

// Aggregator computes per-user statistics on top of an ObservationStore.
type Aggregator struct {
	store ObservationStore
}

func NewAggregator(store ObservationStore) *Aggregator {
	return &Aggregator{store: store}
}

// Latest returns the user's most recent analysis by CreatedAt. Ties keep the
// earliest-inserted record so repeated calls over the same set are stable.
// Returns ErrNoAnalyses when the user has no records.
func (a *Aggregator) Latest(ctx context.Context, username string) (Analysis, error) {
	analyses, err := a.store.ListAnalyses(ctx, username)
	if err != nil {
		return Analysis{}, err
	}
	latest, ok := Latest(analyses)
	if !ok {
		return Analysis{}, ErrNoAnalyses
	}
	return latest, nil
}

// WindowStats computes stress statistics over analyses captured during the
// windowDays days leading up to now.
func (a *Aggregator) WindowStats(ctx context.Context, username string, now time.Time, windowDays int) (Stats, error) {
	analyses, err := a.store.ListAnalyses(ctx, username)
	if err != nil {
		return Stats{}, err
	}
	cutoff := now.AddDate(0, 0, -windowDays)
	var windowed []Analysis
	for _, an := range analyses {
		if !an.CreatedAt.Before(cutoff) {
			windowed = append(windowed, an)
		}
	}
	return HistoryStats(windowed), nil
}

// Latest picks the most recent analysis from an unordered set. The boolean
// is false when the set is empty.
func Latest(analyses []Analysis) (Analysis, bool) {
	if len(analyses) == 0 {
		return Analysis{}, false
	}
	latest := analyses[0]
	for _, an := range analyses[1:] {
		if an.CreatedAt.After(latest.CreatedAt) {
			latest = an
		}
	}
	return latest, true
}

// HistoryStats computes total/stress-count/percentage over the full set.
// Percentage is round(100 * stressCount / total), or 0 for an empty set.
func HistoryStats(analyses []Analysis) Stats {
	stats := Stats{Total: len(analyses)}
	for _, an := range analyses {
		if an.HasStress {
			stats.StressCount++
		}
	}
	stats.Percentage = roundPercentage(stats.StressCount, stats.Total)
	return stats
}

func roundPercentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
