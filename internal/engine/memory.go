package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/types"
)

// MemoryStore is a Store kept in process memory. It is used by the CLI when
// no database is configured and by tests. Values are copied on the way in and
// on the way out.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*types.VoiceDNA
	sessions map[uuid.UUID][]types.VoiceSession
	samples  map[uuid.UUID][]types.WritingSample
	rounds   map[uuid.UUID]map[uuid.UUID]types.CalibrationRound
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[uuid.UUID]*types.VoiceDNA),
		sessions: make(map[uuid.UUID][]types.VoiceSession),
		samples:  make(map[uuid.UUID][]types.WritingSample),
		rounds:   make(map[uuid.UUID]map[uuid.UUID]types.CalibrationRound),
	}
}

func (s *MemoryStore) LoadVoiceDNA(_ context.Context, userID uuid.UUID) (*types.VoiceDNA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return profile.Clone(s.profiles[userID]), nil
}

func (s *MemoryStore) SaveVoiceDNA(_ context.Context, userID uuid.UUID, p *types.VoiceDNA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = profile.Clone(p)
	return nil
}

func (s *MemoryStore) CommitAnalysis(_ context.Context, userID uuid.UUID, p *types.VoiceDNA, session *types.VoiceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = profile.Clone(p)
	if session != nil {
		s.sessions[userID] = append(s.sessions[userID], *session)
	}
	return nil
}

func (s *MemoryStore) CommitWritingSample(_ context.Context, userID uuid.UUID, p *types.VoiceDNA, sample *types.WritingSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = profile.Clone(p)
	if sample != nil {
		s.samples[userID] = append(s.samples[userID], *sample)
	}
	return nil
}

func (s *MemoryStore) CommitCalibration(_ context.Context, userID uuid.UUID, p *types.VoiceDNA, round *types.CalibrationRound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = profile.Clone(p)
	if round != nil {
		s.putRound(*round)
	}
	return nil
}

func (s *MemoryStore) ListCalibrationRounds(_ context.Context, userID uuid.UUID) ([]types.CalibrationRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.CalibrationRound, 0, len(s.rounds[userID]))
	for _, r := range s.rounds[userID] {
		out = append(out, cloneRound(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (s *MemoryStore) GetCalibrationRound(_ context.Context, userID, roundID uuid.UUID) (*types.CalibrationRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rounds[userID][roundID]
	if !ok {
		return nil, &NotFoundError{Resource: "calibration round", ID: roundID.String()}
	}
	out := cloneRound(r)
	return &out, nil
}

func (s *MemoryStore) SaveCalibrationRound(_ context.Context, round *types.CalibrationRound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putRound(*round)
	return nil
}

// Sessions returns the voice sessions committed for a user.
func (s *MemoryStore) Sessions(userID uuid.UUID) []types.VoiceSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.VoiceSession(nil), s.sessions[userID]...)
}

// Samples returns the writing samples committed for a user.
func (s *MemoryStore) Samples(userID uuid.UUID) []types.WritingSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.WritingSample(nil), s.samples[userID]...)
}

// putRound must be called with mu held.
func (s *MemoryStore) putRound(r types.CalibrationRound) {
	byID, ok := s.rounds[r.UserID]
	if !ok {
		byID = make(map[uuid.UUID]types.CalibrationRound)
		s.rounds[r.UserID] = byID
	}
	byID[r.ID] = cloneRound(r)
}

func cloneRound(r types.CalibrationRound) types.CalibrationRound {
	out := r
	if r.Response != nil {
		resp := *r.Response
		out.Response = &resp
	}
	if r.Rating != nil {
		rating := *r.Rating
		out.Rating = &rating
	}
	if r.RatedAt != nil {
		at := *r.RatedAt
		out.RatedAt = &at
	}
	out.InsightsExtracted = append([]types.CalibrationInsight{}, r.InsightsExtracted...)
	return out
}
