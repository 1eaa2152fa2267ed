package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eyeglaze/internal/analytics"
	"eyeglaze/internal/recommend"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

/* =================================================================================
									MODELS
=================================================================================*/

// User is one registered account.
type User struct {
	UserID       uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	BirthDate    time.Time `json:"birthDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// Queries is the hand-written query layer over the pgx pool. It satisfies
// the store interfaces the analytics and recommend packages declare.
type Queries struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}

/* =================================================================================
									USERS
=================================================================================*/

type CreateUserParams struct {
	Username     string
	PasswordHash string
	BirthDate    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	user := User{
		UserID:    uuid.New(),
		Username:  params.Username,
		BirthDate: params.BirthDate,
		CreatedAt: time.Now(),
	}

	_, err := q.db.Exec(ctx,
		`INSERT INTO users (user_id, username, password_hash, birth_date, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		pgtype.UUID{Bytes: user.UserID, Valid: true},
		user.Username,
		params.PasswordHash,
		pgtype.Date{Time: user.BirthDate, Valid: true},
		pgtype.Timestamptz{Time: user.CreatedAt, Valid: true},
	)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	user.PasswordHash = params.PasswordHash
	return user, nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var (
		id        pgtype.UUID
		hash      string
		birthDate pgtype.Date
		createdAt pgtype.Timestamptz
	)

	err := q.db.QueryRow(ctx,
		`SELECT user_id, password_hash, birth_date, created_at
		 FROM users WHERE username = $1`, username).
		Scan(&id, &hash, &birthDate, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}

	return User{
		UserID:       uuid.UUID(id.Bytes),
		Username:     username,
		PasswordHash: hash,
		BirthDate:    birthDate.Time,
		CreatedAt:    createdAt.Time,
	}, nil
}

// UserExists implements recommend.UserDirectory.
func (q *Queries) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

/* =================================================================================
									ANALYSES
=================================================================================*/

type CreateAnalysisParams struct {
	Username  string
	HasStress bool
	ImageURL  *string
}

func (q *Queries) CreateAnalysis(ctx context.Context, params CreateAnalysisParams) (analytics.Analysis, error) {
	analysis := analytics.Analysis{
		AnalysisID: uuid.New(),
		Username:   params.Username,
		HasStress:  params.HasStress,
		ImageURL:   params.ImageURL,
		CreatedAt:  time.Now(),
	}

	imageURL := pgtype.Text{}
	if params.ImageURL != nil {
		imageURL = pgtype.Text{String: *params.ImageURL, Valid: true}
	}

	_, err := q.db.Exec(ctx,
		`INSERT INTO analyses (analysis_id, username, has_stress, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		pgtype.UUID{Bytes: analysis.AnalysisID, Valid: true},
		analysis.Username,
		analysis.HasStress,
		imageURL,
		pgtype.Timestamptz{Time: analysis.CreatedAt, Valid: true},
	)
	if err != nil {
		return analytics.Analysis{}, fmt.Errorf("insert analysis: %w", err)
	}
	return analysis, nil
}

// ListAnalyses implements analytics.ObservationStore. Rows come back newest
// first; the analytics package does not rely on ordering.
func (q *Queries) ListAnalyses(ctx context.Context, username string) ([]analytics.Analysis, error) {
	rows, err := q.db.Query(ctx,
		`SELECT analysis_id, has_stress, image_url, created_at
		 FROM analyses WHERE username = $1
		 ORDER BY created_at DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("select analyses: %w", err)
	}
	defer rows.Close()

	var analyses []analytics.Analysis
	for rows.Next() {
		var (
			id        pgtype.UUID
			hasStress bool
			imageURL  pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &hasStress, &imageURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}

		analysis := analytics.Analysis{
			AnalysisID: uuid.UUID(id.Bytes),
			Username:   username,
			HasStress:  hasStress,
			CreatedAt:  createdAt.Time,
		}
		if imageURL.Valid {
			analysis.ImageURL = &imageURL.String
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

func (q *Queries) CountAnalyses(ctx context.Context, username string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM analyses WHERE username = $1`, username).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

/* =================================================================================
								RECOMMENDATIONS
=================================================================================*/

// InsertRecommendation implements recommend.RecommendationStore. Single
// append-only insert; records are never updated afterwards.
func (q *Queries) InsertRecommendation(ctx context.Context, rec recommend.Record) error {
	snapshot, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis snapshot: %w", err)
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = q.db.Exec(ctx,
		`INSERT INTO recommendations
		 (recommendation_id, username, analysis_id, created_at,
		  analysis_snapshot, stats_total, stats_stress_count, stats_percentage, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pgtype.UUID{Bytes: rec.RecommendationID, Valid: true},
		rec.Username,
		pgtype.UUID{Bytes: rec.AnalysisID, Valid: true},
		pgtype.Timestamptz{Time: rec.CreatedAt, Valid: true},
		snapshot,
		rec.Stats.TotalAnalysesLastWeek,
		rec.Stats.StressDetectedCount,
		rec.Stats.StressPercentage,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// ListRecommendations implements recommend.RecommendationStore, newest first.
func (q *Queries) ListRecommendations(ctx context.Context, username string, limit, skip int) ([]recommend.Record, error) {
	rows, err := q.db.Query(ctx,
		`SELECT recommendation_id, analysis_id, created_at,
		        analysis_snapshot, stats_total, stats_stress_count, stats_percentage, payload
		 FROM recommendations WHERE username = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, username, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("select recommendations: %w", err)
	}
	defer rows.Close()

	var records []recommend.Record
	for rows.Next() {
		var (
			id        pgtype.UUID
			analysis  pgtype.UUID
			createdAt pgtype.Timestamptz
			snapshot  []byte
			payload   []byte
		)
		rec := recommend.Record{Username: username}
		if err := rows.Scan(&id, &analysis, &createdAt, &snapshot,
			&rec.Stats.TotalAnalysesLastWeek, &rec.Stats.StressDetectedCount,
			&rec.Stats.StressPercentage, &payload); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}

		rec.RecommendationID = uuid.UUID(id.Bytes)
		rec.AnalysisID = uuid.UUID(analysis.Bytes)
		rec.CreatedAt = createdAt.Time
		if err := json.Unmarshal(snapshot, &rec.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis snapshot: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountRecommendations implements recommend.RecommendationStore.
func (q *Queries) CountRecommendations(ctx context.Context, username string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE username = $1`, username).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recommendations: %w", err)
	}
	return count, nil
}
