/*
Package recommend produces and persists eye health recommendations. The
Engine composes the user directory, the analysis store, the recommendation
store and the generation client behind small interfaces so the whole
pipeline runs against in-memory fakes in tests.
*/
package recommend

import (
	"context"
	"fmt"
	"time"

	"eyeglaze/internal/analytics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

/* =================================================================================
							COLLABORATOR INTERFACES
=================================================================================*/

// UserDirectory answers existence lookups for registered users.
type UserDirectory interface {
	UserExists(ctx context.Context, username string) (bool, error)
}

// RecommendationStore is the append-only persistence for recommendation
// records. Records are inserted exactly once and never updated.
type RecommendationStore interface {
	InsertRecommendation(ctx context.Context, rec Record) error
	ListRecommendations(ctx context.Context, username string, limit, skip int) ([]Record, error)
	CountRecommendations(ctx context.Context, username string) (int64, error)
}

// Generator is the external language-generation capability. It may be slow,
// may fail outright, and may return output in any shape.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

/* =================================================================================
								RECORD & RESPONSE TYPES
=================================================================================*/

// AnalysisSnapshot captures the analysis a recommendation was derived from,
// frozen at generation time.
type AnalysisSnapshot struct {
	HasStress bool      `json:"hasStress"`
	CreatedAt time.Time `json:"createdAt"`
	ImageURL  *string   `json:"imageUrl"`
}

// WindowStats is the rolling 7-day stress summary persisted with each record.
type WindowStats struct {
	TotalAnalysesLastWeek int `json:"totalAnalysesLastWeek"`
	StressDetectedCount   int `json:"stressDetectedCount"`
	StressPercentage      int `json:"stressPercentage"`
}

// Record is one persisted recommendation with its supporting statistics.
type Record struct {
	RecommendationID uuid.UUID        `json:"id"`
	Username         string           `json:"username"`
	AnalysisID       uuid.UUID        `json:"analysisId"`
	CreatedAt        time.Time        `json:"createdAt"`
	Analysis         AnalysisSnapshot `json:"analysisData"`
	Stats            WindowStats      `json:"stats"`
	Payload          Payload          `json:"recommendations"`
}

// Result is the caller-facing projection of a freshly produced record.
type Result struct {
	Analysis        AnalysisSnapshot `json:"analysis"`
	Stats           WindowStats      `json:"stats"`
	Recommendations Payload          `json:"recommendations"`
}

// HistorySummary is the full-history portion of the summary response.
type HistorySummary struct {
	TotalAnalyses       int       `json:"totalAnalyses"`
	StressDetectedCount int       `json:"stressDetectedCount"`
	StressPercentage    int       `json:"stressPercentage"`
	LatestStatus        string    `json:"latestStatus"`
	LatestAnalysisTime  time.Time `json:"latestAnalysisTime"`
}

// SummaryResult pairs the full-history summary with the weekly trend series.
type SummaryResult struct {
	Summary      HistorySummary           `json:"summary"`
	WeeklyTrends []analytics.WeeklyBucket `json:"weeklyTrends"`
}

// Pagination describes the slice of history returned by History.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Skip    int  `json:"skip"`
	HasMore bool `json:"hasMore"`
}

// HistoryPage is one page of persisted recommendations.
type HistoryPage struct {
	Recommendations []Record   `json:"recommendations"`
	Pagination      Pagination `json:"pagination"`
}

/* =================================================================================
									ENGINE
=================================================================================*/

// Engine wires the recommendation pipeline together. Construct with
// NewEngine; the zero value is not usable.
type Engine struct {
	users    UserDirectory
	stats    *analytics.Aggregator
	analyses analytics.ObservationStore
	recs     RecommendationStore
	gen      Generator
	fallback Payload
}

func NewEngine(users UserDirectory, analyses analytics.ObservationStore, recs RecommendationStore, gen Generator) *Engine {
	return &Engine{
		users:    users,
		stats:    analytics.NewAggregator(analyses),
		analyses: analyses,
		recs:     recs,
		gen:      gen,
		fallback: DefaultFallback,
	}
}

// WithFallback overrides the payload used when generation output cannot be
// decoded.
func (e *Engine) WithFallback(p Payload) *Engine {
	e.fallback = p
	return e
}

// Produce runs the end-to-end pipeline for one user: validate, aggregate,
// prompt, generate, extract, persist. On success exactly one record has been
// written; on any failure nothing has been written. Concurrent calls for the
// same user each persist their own independent record.
func (e *Engine) Produce(ctx context.Context, username string, now time.Time) (*Result, error) {
	exists, err := e.users.UserExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	latest, err := e.stats.Latest(ctx, username)
	if err != nil {
		return nil, err
	}

	window, err := e.stats.WindowStats(ctx, username, now, statsWindowDays)
	if err != nil {
		return nil, fmt.Errorf("compute window stats: %w", err)
	}

	prompt := buildPrompt(latest.HasStress, window.StressCount, window.Total, window.Percentage)

	log.Info().Str("username", username).Msg("Requesting recommendation from generation service")
	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Generation call failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	payload := ExtractPayload(raw, e.fallback)

	rec := Record{
		RecommendationID: uuid.New(),
		Username:         username,
		AnalysisID:       latest.AnalysisID,
		CreatedAt:        now,
		Analysis: AnalysisSnapshot{
			HasStress: latest.HasStress,
			CreatedAt: latest.CreatedAt,
			ImageURL:  latest.ImageURL,
		},
		Stats: WindowStats{
			TotalAnalysesLastWeek: window.Total,
			StressDetectedCount:   window.StressCount,
			StressPercentage:      window.Percentage,
		},
		Payload: payload,
	}

	if err := e.recs.InsertRecommendation(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert recommendation: %w", err)
	}

	log.Info().Str("username", username).Str("recommendation_id", rec.RecommendationID.String()).
		Msg("Recommendation persisted")

	return &Result{
		Analysis:        rec.Analysis,
		Stats:           rec.Stats,
		Recommendations: rec.Payload,
	}, nil
}

// Summary computes full-history statistics and the weekly trend series.
// Purely a read path; nothing is persisted.
func (e *Engine) Summary(ctx context.Context, username string) (*SummaryResult, error) {
	exists, err := e.users.UserExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	analyses, err := e.analyses.ListAnalyses(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	if len(analyses) == 0 {
		return nil, ErrNoHistory
	}

	stats := analytics.HistoryStats(analyses)
	latest, _ := analytics.Latest(analyses)

	latestStatus := "No stress detected"
	if latest.HasStress {
		latestStatus = "Stress detected"
	}

	return &SummaryResult{
		Summary: HistorySummary{
			TotalAnalyses:       stats.Total,
			StressDetectedCount: stats.StressCount,
			StressPercentage:    stats.Percentage,
			LatestStatus:        latestStatus,
			LatestAnalysisTime:  latest.CreatedAt,
		},
		WeeklyTrends: analytics.WeeklyTrends(analyses),
	}, nil
}

// History returns one page of persisted recommendations, newest first. The
// page and the total count are fetched in parallel.
func (e *Engine) History(ctx context.Context, username string, limit, skip int) (*HistoryPage, error) {
	exists, err := e.users.UserExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	var (
		records []Record
		total   int64
	)

	g, grpCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = e.recs.ListRecommendations(grpCtx, username, limit, skip)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = e.recs.CountRecommendations(grpCtx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch recommendation history: %w", err)
	}

	if records == nil {
		records = []Record{}
	}

	return &HistoryPage{
		Recommendations: records,
		Pagination: Pagination{
			Total:   int(total),
			Limit:   limit,
			Skip:    skip,
			HasMore: skip+len(records) < int(total),
		},
	}, nil
}
