package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/voicedna/internal/calibration"
	"github.com/jonathan/voicedna/internal/engine"
	"github.com/jonathan/voicedna/internal/types"
)

const roundColumns = `id, user_id, round_number, prompt_text, response_type, response_content,
	generated_sample, rating, feedback, insights, created_at, rated_at`

// roundRow mirrors a calibration_rounds row; nullable columns are pointers.
type roundRow struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	RoundNumber     int
	PromptText      string
	ResponseType    *string
	ResponseContent *string
	GeneratedSample *string
	Rating          *int
	Feedback        *string
	Insights        []byte
	CreatedAt       time.Time
	RatedAt         *time.Time
}

func (r *roundRow) scanTargets() []any {
	return []any{
		&r.ID, &r.UserID, &r.RoundNumber, &r.PromptText, &r.ResponseType, &r.ResponseContent,
		&r.GeneratedSample, &r.Rating, &r.Feedback, &r.Insights, &r.CreatedAt, &r.RatedAt,
	}
}

func (r *roundRow) toRound() (*types.CalibrationRound, error) {
	out := &types.CalibrationRound{
		ID:                r.ID,
		UserID:            r.UserID,
		RoundNumber:       r.RoundNumber,
		PromptText:        r.PromptText,
		GeneratedSample:   deref(r.GeneratedSample),
		Rating:            r.Rating,
		Feedback:          deref(r.Feedback),
		InsightsExtracted: []types.CalibrationInsight{},
		CreatedAt:         r.CreatedAt.UTC(),
	}
	if r.ResponseType != nil {
		out.Response = &types.RoundResponse{
			Type:    types.ResponseType(*r.ResponseType),
			Content: deref(r.ResponseContent),
		}
	}
	if r.RatedAt != nil {
		at := r.RatedAt.UTC()
		out.RatedAt = &at
	}
	if len(r.Insights) > 0 {
		if err := json.Unmarshal(r.Insights, &out.InsightsExtracted); err != nil {
			return nil, fmt.Errorf("failed to decode insights for round %s: %w", r.ID, err)
		}
	}
	return out, nil
}

// roundArgs flattens a round into the INSERT column order.
func roundArgs(r *types.CalibrationRound) ([]any, error) {
	insights := r.InsightsExtracted
	if insights == nil {
		insights = []types.CalibrationInsight{}
	}
	raw, err := json.Marshal(insights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode insights: %w", err)
	}

	var respType, respContent *string
	if r.Response != nil {
		t := string(r.Response.Type)
		respType, respContent = &t, &r.Response.Content
	}
	return []any{
		r.ID, r.UserID, r.RoundNumber, r.PromptText, respType, respContent,
		nullString(r.GeneratedSample), r.Rating, nullString(r.Feedback), raw, r.CreatedAt, r.RatedAt,
	}, nil
}

// upsertRound inserts or updates a round. A rated row is never overwritten.
func upsertRound(ctx context.Context, q execer, r *types.CalibrationRound) error {
	args, err := roundArgs(r)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx,
		`INSERT INTO calibration_rounds (`+roundColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE
		 SET response_type = $5, response_content = $6, generated_sample = $7,
		     rating = $8, feedback = $9, insights = $10, rated_at = $12
		 WHERE calibration_rounds.rating IS NULL`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to save calibration round: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calibration.ErrRoundAlreadyRated
	}
	return nil
}

// SaveCalibrationRound inserts or updates an unrated round.
func (db *DB) SaveCalibrationRound(ctx context.Context, round *types.CalibrationRound) error {
	return upsertRound(ctx, db.pool, round)
}

// ListCalibrationRounds returns the user's rounds ordered by round number.
func (db *DB) ListCalibrationRounds(ctx context.Context, userID uuid.UUID) ([]types.CalibrationRound, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+roundColumns+` FROM calibration_rounds
		 WHERE user_id = $1 ORDER BY round_number`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibration rounds: %w", err)
	}
	defer rows.Close()

	rounds := []types.CalibrationRound{}
	for rows.Next() {
		var row roundRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan calibration round: %w", err)
		}
		r, err := row.toRound()
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read calibration rounds: %w", err)
	}
	return rounds, nil
}

// GetCalibrationRound returns one of the user's rounds.
func (db *DB) GetCalibrationRound(ctx context.Context, userID, roundID uuid.UUID) (*types.CalibrationRound, error) {
	var row roundRow
	err := db.pool.QueryRow(ctx,
		`SELECT `+roundColumns+` FROM calibration_rounds WHERE id = $1 AND user_id = $2`,
		roundID, userID,
	).Scan(row.scanTargets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &engine.NotFoundError{Resource: "calibration round", ID: roundID.String()}
		}
		return nil, fmt.Errorf("failed to get calibration round: %w", err)
	}
	return row.toRound()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
