package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDefinesTables(t *testing.T) {
	for _, table := range []string{"voice_dna", "voice_sessions", "writing_samples", "calibration_rounds"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schemaSQL, "UNIQUE (user_id, round_number)")
}

func TestRoundArgs_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rated := created.Add(time.Minute)
	rating := 4
	round := &types.CalibrationRound{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		RoundNumber:       2,
		PromptText:        "Tell me about a win.",
		Response:          &types.RoundResponse{Type: types.ResponseText, Content: "We shipped it."},
		GeneratedSample:   "A sample.",
		Rating:            &rating,
		Feedback:          "shorter",
		InsightsExtracted: []types.CalibrationInsight{{Type: types.RuleStructure, Insight: "Keep it shorter", Confidence: 0.68}},
		CreatedAt:         created,
		RatedAt:           &rated,
	}

	args, err := roundArgs(round)
	require.NoError(t, err)
	require.Len(t, args, 12)

	row := roundRow{
		ID:              args[0].(uuid.UUID),
		UserID:          args[1].(uuid.UUID),
		RoundNumber:     args[2].(int),
		PromptText:      args[3].(string),
		ResponseType:    args[4].(*string),
		ResponseContent: args[5].(*string),
		GeneratedSample: args[6].(*string),
		Rating:          args[7].(*int),
		Feedback:        args[8].(*string),
		Insights:        args[9].([]byte),
		CreatedAt:       args[10].(time.Time),
		RatedAt:         args[11].(*time.Time),
	}
	got, err := row.toRound()
	require.NoError(t, err)
	assert.Equal(t, round, got)
}

func TestRoundArgs_Unanswered(t *testing.T) {
	round := &types.CalibrationRound{ID: uuid.New(), UserID: uuid.New(), RoundNumber: 1, PromptText: "p"}

	args, err := roundArgs(round)
	require.NoError(t, err)
	assert.Nil(t, args[4])
	assert.Nil(t, args[5])
	assert.Nil(t, args[6])
	assert.JSONEq(t, "[]", string(args[9].([]byte)))

	row := roundRow{ID: round.ID, UserID: round.UserID, RoundNumber: 1, PromptText: "p"}
	got, err := row.toRound()
	require.NoError(t, err)
	assert.Nil(t, got.Response)
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.RatedAt)
	assert.Equal(t, []types.CalibrationInsight{}, got.InsightsExtracted)
}

func TestRoundRow_BadInsights(t *testing.T) {
	row := roundRow{ID: uuid.New(), Insights: json.RawMessage(`{"not": "a list"}`)}
	_, err := row.toRound()
	assert.ErrorContains(t, err, "failed to decode insights")
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	require.NotNil(t, nullString("en"))
	assert.Equal(t, "en", *nullString("en"))
	assert.Equal(t, "", deref(nil))
}
