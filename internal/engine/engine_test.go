package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/calibration"
	"github.com/jonathan/voicedna/internal/composer"
	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const transcript = `So here's the thing about onboarding. We kept losing people in the first week.
Honestly, it wasn't the product. It was the silence after signup. So we started calling every new customer.
Does that scale? Not forever. But it taught us what people actually needed, and that changed everything.`

type fakeClient struct {
	mu         sync.Mutex
	response   string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
	lastTier   llm.ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateWithSystem(context.Background(), "", prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	// Forces the heuristic insight path.
	return "", errors.New("json not supported by fake")
}

func (f *fakeClient) GenerateWithSystem(_ context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem, f.lastPrompt, f.lastTier = system, prompt, tier
	return f.response, f.err
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return "fake-" + string(tier) }

func (f *fakeClient) Close() error { return nil }

func newTestEngine(t *testing.T, client llm.Client) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	opts := Options{Store: store, Logger: zap.NewNop()}
	if client != nil {
		opts.Client = client
	}
	e, err := New(config.Config{}, opts)
	require.NoError(t, err)
	return e, store
}

// timed spreads words evenly, 0.3s each with a 0.1s gap.
func timed(text string) []types.WordTimestamp {
	fields := strings.Fields(text)
	words := make([]types.WordTimestamp, len(fields))
	at := 0.0
	for i, w := range fields {
		words[i] = types.WordTimestamp{Word: w, Start: at, End: at + 0.3}
		at += 0.4
	}
	return words
}

func sessionRequest() types.AnalyzeSessionRequest {
	words := timed(transcript)
	return types.AnalyzeSessionRequest{
		Transcript: transcript,
		Words:      words,
		Duration:   words[len(words)-1].End,
		Language:   "en",
	}
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(config.Config{}, Options{})
	assert.Error(t, err)
}

func TestAnalyzeVoiceSession_NewProfile(t *testing.T) {
	e, store := newTestEngine(t, nil)
	user := uuid.New()

	res, err := e.AnalyzeVoiceSession(context.Background(), user, sessionRequest())
	require.NoError(t, err)

	assert.True(t, res.IsNewProfile)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 1, res.Profile.VoiceSessionsAnalyzed)
	assert.Equal(t, res.Profile.CalibrationScore, res.CalibrationScoreChange)
	assert.True(t, strings.HasPrefix(res.ContributionID, "session:"))
	require.NotNil(t, res.Enthusiasm)
	require.NotNil(t, res.Features)

	stored, err := e.Profile(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, res.Profile.CalibrationScore, stored.CalibrationScore)

	sessions := store.Sessions(user)
	require.Len(t, sessions, 1)
	assert.Equal(t, user, sessions[0].UserID)
	assert.Equal(t, res.Enthusiasm, sessions[0].Enthusiasm)
}

func TestAnalyzeVoiceSession_SecondSessionIsNotNew(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	_, err := e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)
	res, err := e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)

	assert.False(t, res.IsNewProfile)
	assert.Equal(t, 2, res.Profile.VoiceSessionsAnalyzed)
	assert.GreaterOrEqual(t, res.CalibrationScoreChange, 0)
}

func TestAnalyzeVoiceSession_RejectsBadInput(t *testing.T) {
	e, store := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	_, err := e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)
	before, err := e.Profile(ctx, user)
	require.NoError(t, err)

	short := types.AnalyzeSessionRequest{Transcript: "too short to count"}
	_, err = e.AnalyzeVoiceSession(ctx, user, short)
	assert.True(t, errors.Is(err, types.ErrValidation))

	overlapping := sessionRequest()
	overlapping.Words[3].Start = overlapping.Words[2].Start + 0.1
	_, err = e.AnalyzeVoiceSession(ctx, user, overlapping)
	assert.True(t, errors.Is(err, types.ErrValidation))

	missing := types.AnalyzeSessionRequest{}
	_, err = e.AnalyzeVoiceSession(ctx, user, missing)
	assert.True(t, errors.Is(err, types.ErrValidation))

	after, err := e.Profile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, store.Sessions(user), 1)
}

func TestAnalyzeVoiceSession_RetryIsNoOp(t *testing.T) {
	e, store := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	req := sessionRequest()
	req.ContributionID = "upload-42"

	first, err := e.AnalyzeVoiceSession(ctx, user, req)
	require.NoError(t, err)
	second, err := e.AnalyzeVoiceSession(ctx, user, req)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, "upload-42", second.ContributionID)
	assert.Equal(t, 1, second.Profile.VoiceSessionsAnalyzed)
	assert.Equal(t, first.Profile.CalibrationScore, second.Profile.CalibrationScore)
	assert.Len(t, store.Sessions(user), 1)
}

func TestAnalyzeWritingSample_ContentHashDedup(t *testing.T) {
	e, store := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	first, err := e.AnalyzeWritingSample(ctx, user, types.WritingSampleRequest{Text: transcript})
	require.NoError(t, err)
	assert.True(t, first.IsNewProfile)
	assert.True(t, strings.HasPrefix(first.ContributionID, "sample:"))
	assert.Equal(t, 1, first.Profile.WritingSamplesAnalyzed)
	assert.Equal(t, 0, first.Profile.VoiceSessionsAnalyzed)

	// Whitespace differences clean to the same text.
	again, err := e.AnalyzeWritingSample(ctx, user, types.WritingSampleRequest{Text: "  " + transcript + "\n\n\n"})
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, 1, again.Profile.WritingSamplesAnalyzed)
	assert.Len(t, store.Samples(user), 1)
}

func TestImportWritingSample(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, "<html><head><title>Onboarding</title></head><body><nav>Menu</nav><article><p>%s</p></article></body></html>", transcript)
	}))
	defer server.Close()

	e, store := newTestEngine(t, nil)
	user := uuid.New()

	res, err := e.ImportWritingSample(context.Background(), user, types.ImportSampleRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.WritingSamplesAnalyzed)

	samples := store.Samples(user)
	require.Len(t, samples, 1)
	assert.Equal(t, server.URL, samples[0].SourceURL)
	assert.NotContains(t, samples[0].Text, "Menu")

	_, err = e.ImportWritingSample(context.Background(), user, types.ImportSampleRequest{URL: "nope"})
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestCalibrationFlow(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	round, err := e.StartCalibrationRound(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, round.RoundNumber)

	_, err = e.RateRound(ctx, user, round.ID, types.RateRoundRequest{Rating: 4})
	assert.ErrorIs(t, err, calibration.ErrRoundNotAnswered)

	answered, err := e.RespondToRound(ctx, user, round.ID, types.RespondRoundRequest{Type: types.ResponseText, Content: "We doubled retention."})
	require.NoError(t, err)
	assert.Empty(t, answered.GeneratedSample)

	res, err := e.RateRound(ctx, user, round.ID, types.RateRoundRequest{Rating: 2, Feedback: "Way too formal"})
	require.NoError(t, err)
	assert.True(t, res.IsNewProfile)
	assert.Equal(t, 1, res.Profile.CalibrationRoundsCompleted)
	require.Len(t, res.Profile.LearnedRules, 1)
	assert.Equal(t, types.RuleToneAdjustment, res.Profile.LearnedRules[0].Type)
	assert.Equal(t, 1, res.Profile.LearnedRules[0].SourceRound)
	require.NotNil(t, res.Round)
	assert.True(t, res.Round.IsRated())

	stored, err := e.store.GetCalibrationRound(ctx, user, round.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, *stored.Rating)
	assert.Equal(t, "Way too formal", stored.Feedback)

	_, err = e.RateRound(ctx, user, round.ID, types.RateRoundRequest{Rating: 5})
	assert.ErrorIs(t, err, calibration.ErrRoundAlreadyRated)

	next, err := e.StartCalibrationRound(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, next.RoundNumber)
	assert.NotEqual(t, round.PromptText, next.PromptText)

	rounds, err := e.ListCalibrationRounds(ctx, user)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, 1, rounds[0].RoundNumber)
}

func TestCalibration_UnknownRound(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	user := uuid.New()

	round, err := e.StartCalibrationRound(ctx, user)
	require.NoError(t, err)

	_, err = e.RespondToRound(ctx, user, uuid.New(), types.RespondRoundRequest{Type: types.ResponseText, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	// Rounds are scoped to their owner.
	_, err = e.RespondToRound(ctx, uuid.New(), round.ID, types.RespondRoundRequest{Type: types.ResponseText, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRespondToRound_GeneratesSample(t *testing.T) {
	client := &fakeClient{response: "  A sample in your voice.  "}
	e, _ := newTestEngine(t, client)
	user := uuid.New()
	ctx := context.Background()

	round, err := e.StartCalibrationRound(ctx, user)
	require.NoError(t, err)
	answered, err := e.RespondToRound(ctx, user, round.ID, types.RespondRoundRequest{Type: types.ResponseVoice, Content: "We doubled retention."})
	require.NoError(t, err)

	assert.Equal(t, "A sample in your voice.", answered.GeneratedSample)
	assert.Equal(t, llm.TierStandard, client.lastTier)
	assert.Equal(t, e.SystemPrompt(), client.lastSystem)
	assert.Contains(t, client.lastPrompt, "We doubled retention.")
	assert.Contains(t, client.lastPrompt, fmt.Sprint(calibration.SampleWords))
}

func TestRespondToRound_GenerationFailureKeepsResponse(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	e, _ := newTestEngine(t, client)
	user := uuid.New()
	ctx := context.Background()

	round, err := e.StartCalibrationRound(ctx, user)
	require.NoError(t, err)
	answered, err := e.RespondToRound(ctx, user, round.ID, types.RespondRoundRequest{Type: types.ResponseText, Content: "An answer."})
	require.NoError(t, err)

	assert.Empty(t, answered.GeneratedSample)
	require.NotNil(t, answered.Response)
	assert.Equal(t, "An answer.", answered.Response.Content)
}

func TestSetReferentBlend(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	req := types.BlendRequest{Referents: []types.ReferentSelection{
		{ReferentID: "ref-coach", Weight: 60},
		{ReferentID: "ref-analyst", Weight: 30},
	}}
	_, err := e.SetReferentBlend(ctx, user, req)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)

	ri, err := e.SetReferentBlend(ctx, user, req)
	require.NoError(t, err)
	assert.Equal(t, 50, ri.UserWeight)
	assert.Equal(t, 50, ri.ReferentTotal())

	p, err := e.Profile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, ri, p.ReferentInfluences)

	_, err = e.SetReferentBlend(ctx, user, types.BlendRequest{Referents: []types.ReferentSelection{{ReferentID: "ref-nobody", Weight: 10}}})
	assert.True(t, errors.Is(err, types.ErrValidation))

	cleared, err := e.SetReferentBlend(ctx, user, types.BlendRequest{})
	require.NoError(t, err)
	assert.Equal(t, 100, cleared.UserWeight)
	assert.Empty(t, cleared.Referents)
}

func TestSetReferentBlend_LogsDroppedReferents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e, err := New(config.Config{}, Options{Store: NewMemoryStore(), Logger: zap.New(core)})
	require.NoError(t, err)
	user := uuid.New()
	ctx := context.Background()
	_, err = e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)

	ri, err := e.SetReferentBlend(ctx, user, types.BlendRequest{Referents: []types.ReferentSelection{
		{ReferentID: "ref-coach", Weight: 100},
		{ReferentID: "ref-analyst", Weight: 1},
	}})
	require.NoError(t, err)
	require.Len(t, ri.Referents, 1)
	assert.Equal(t, "ref-coach", ri.Referents[0].ID)
	assert.Equal(t, 50, ri.UserWeight)

	dropped := logs.FilterMessage("referents dropped from blend after scaling").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, []any{"ref-analyst"}, dropped[0].ContextMap()["dropped"])
}

func TestComposePrompt(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()
	req := types.ComposeRequest{Transcript: "We doubled retention by calling customers."}

	_, err := e.ComposePrompt(ctx, user, req)
	assert.ErrorIs(t, err, composer.ErrComposerInputIncomplete)

	_, err = e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)

	first, err := e.ComposePrompt(ctx, user, req)
	require.NoError(t, err)
	second, err := e.ComposePrompt(ctx, user, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "We doubled retention by calling customers.")

	_, err = e.ComposePrompt(ctx, user, types.ComposeRequest{Transcript: "   "})
	assert.ErrorIs(t, err, composer.ErrComposerInputIncomplete)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	req := types.ComposeRequest{Transcript: "We doubled retention by calling customers."}

	withoutClient, _ := newTestEngine(t, nil)
	_, err := withoutClient.Generate(ctx, user, req)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)

	client := &fakeClient{response: "\nThe post.\n"}
	e, _ := newTestEngine(t, client)

	_, err = e.Generate(ctx, user, req)
	assert.ErrorIs(t, err, composer.ErrComposerInputIncomplete)
	assert.Equal(t, 0, client.calls)

	_, err = e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)

	gen, err := e.Generate(ctx, user, req)
	require.NoError(t, err)
	assert.Equal(t, "The post.", gen.Content)
	assert.Equal(t, "fake-advanced", gen.Model)
	assert.Equal(t, client.lastPrompt, gen.Prompt)
	assert.Equal(t, llm.TierAdvanced, client.lastTier)

	client.err = errors.New("boom")
	_, err = e.Generate(ctx, user, req)
	assert.Error(t, err)
}

func TestSummaryAndRecalibrate(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	user := uuid.New()
	ctx := context.Background()

	s, err := e.Summary(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, profile.StateNone, s.State)

	_, err = e.Recalibrate(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := e.AnalyzeVoiceSession(ctx, user, sessionRequest())
	require.NoError(t, err)

	s, err = e.Summary(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, s.VoiceSessionsAnalyzed)
	assert.Equal(t, res.Profile.CalibrationScore, s.CalibrationScore)

	// Inflate the stored score; a corrective recompute brings it back down.
	p, err := e.Profile(ctx, user)
	require.NoError(t, err)
	p.CalibrationScore = 100
	require.NoError(t, e.store.SaveVoiceDNA(ctx, user, p))

	recal, err := e.Recalibrate(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, res.Profile.CalibrationScore, recal.Profile.CalibrationScore)
	assert.Equal(t, res.Profile.CalibrationScore-100, recal.CalibrationScoreChange)
}

func TestConcurrentContributionsAreSerialized(t *testing.T) {
	e, store := newTestEngine(t, nil)
	user := uuid.New()
	const n = 10

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("Draft number %d. %s", i, transcript)
			_, err := e.AnalyzeWritingSample(context.Background(), user, types.WritingSampleRequest{Text: text})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := e.Profile(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, n, p.WritingSamplesAnalyzed)
	assert.Len(t, p.History, n)
	assert.Len(t, store.Samples(user), n)
	assert.Equal(t, 0, e.locks.Len())
}

func TestAnalysisTimestampsUseClock(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	res, err := e.AnalyzeVoiceSession(context.Background(), uuid.New(), sessionRequest())
	require.NoError(t, err)
	assert.Equal(t, fixed, res.Profile.CreatedAt)
	assert.Equal(t, fixed, res.Profile.History[0].At)
}
