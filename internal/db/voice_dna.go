package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/voicedna/internal/types"
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LoadVoiceDNA returns the user's profile, or nil when there is none.
func (db *DB) LoadVoiceDNA(ctx context.Context, userID uuid.UUID) (*types.VoiceDNA, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx,
		`SELECT profile FROM voice_dna WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load voice profile: %w", err)
	}

	var p types.VoiceDNA
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode voice profile: %w", err)
	}
	return &p, nil
}

// SaveVoiceDNA upserts the user's profile.
func (db *DB) SaveVoiceDNA(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA) error {
	return upsertVoiceDNA(ctx, db.pool, userID, p)
}

func upsertVoiceDNA(ctx context.Context, q execer, userID uuid.UUID, p *types.VoiceDNA) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode voice profile: %w", err)
	}
	_, err = q.Exec(ctx,
		`INSERT INTO voice_dna (user_id, profile, calibration_score, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET profile = $2, calibration_score = $3, updated_at = $5`,
		userID, raw, p.CalibrationScore, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save voice profile: %w", err)
	}
	return nil
}

// CommitAnalysis stores the profile and the voice session it came from.
func (db *DB) CommitAnalysis(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA, session *types.VoiceSession) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if err := upsertVoiceDNA(ctx, tx, userID, p); err != nil {
			return err
		}
		if session == nil {
			return nil
		}
		enthusiasm, err := json.Marshal(session.Enthusiasm)
		if err != nil {
			return fmt.Errorf("failed to encode enthusiasm analysis: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO voice_sessions (id, user_id, transcript, duration, language, enthusiasm, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			session.ID, userID, session.Transcript, session.Duration, nullString(session.Language), enthusiasm, session.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert voice session: %w", err)
		}
		return nil
	})
}

// CommitWritingSample stores the profile and the writing sample it came from.
func (db *DB) CommitWritingSample(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA, sample *types.WritingSample) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if err := upsertVoiceDNA(ctx, tx, userID, p); err != nil {
			return err
		}
		if sample == nil {
			return nil
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO writing_samples (id, user_id, source_url, text, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			sample.ID, userID, nullString(sample.SourceURL), sample.Text, sample.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert writing sample: %w", err)
		}
		return nil
	})
}

// CommitCalibration stores the profile and the rated round that updated it.
func (db *DB) CommitCalibration(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA, round *types.CalibrationRound) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if err := upsertVoiceDNA(ctx, tx, userID, p); err != nil {
			return err
		}
		if round == nil {
			return nil
		}
		return upsertRound(ctx, tx, round)
	})
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
