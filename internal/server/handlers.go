package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/engine"
	"github.com/jonathan/voicedna/internal/server/middleware"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
)

// handleHealth reports liveness and, when a store is configured, its reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListReferents(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"referents": s.engine.Catalog().All()})
}

// requireUserID reads the id stored by the auth middleware.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		s.jsonResponse(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "missing user"})
	}
	return userID, ok
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, types.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

// contributionStatus is 201 for a merged contribution and 200 for a retry.
func contributionStatus(res *engine.Result) int {
	if res.Duplicate {
		return http.StatusOK
	}
	return http.StatusCreated
}

func (s *Server) handleAnalyzeSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.AnalyzeSessionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.engine.AnalyzeVoiceSession(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, contributionStatus(res), res)
}

func (s *Server) handleWritingSample(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.WritingSampleRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.engine.AnalyzeWritingSample(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, contributionStatus(res), res)
}

func (s *Server) handleImportSample(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.ImportSampleRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.engine.ImportWritingSample(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, contributionStatus(res), res)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	p, err := s.engine.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	summary, err := s.engine.Summary(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleSetBlend(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.BlendRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	influences, err := s.engine.SetReferentBlend(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, influences)
}

func (s *Server) handleRecalibrate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	res, err := s.engine.Recalibrate(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	round, err := s.engine.StartCalibrationRound(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, round)
}

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	rounds, err := s.engine.ListCalibrationRounds(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"rounds": rounds})
}

func (s *Server) handleRespondRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	roundID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.RespondRoundRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	round, err := s.engine.RespondToRound(r.Context(), userID, roundID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, round)
}

func (s *Server) handleRateRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	roundID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.RateRoundRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.engine.RateRound(r.Context(), userID, roundID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// ComposeResponse carries a composed prompt and the persona it pairs with.
type ComposeResponse struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.ComposeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	prompt, err := s.engine.ComposePrompt(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ComposeResponse{Prompt: prompt, SystemPrompt: s.engine.SystemPrompt()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.ComposeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	gen, err := s.engine.Generate(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, gen)
}

// handleGenerateStream composes first so input errors still get a plain JSON
// response, then streams "prompt", "content" and "complete" events.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	var req types.ComposeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	prompt, err := s.engine.ComposePrompt(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stream, err := openEventStream(w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := stream.send(eventPrompt, ComposeResponse{Prompt: prompt, SystemPrompt: s.engine.SystemPrompt()}); err != nil {
		return
	}

	stop := stream.keepAlive(r.Context(), keepAliveInterval)
	gen, err := s.engine.Generate(r.Context(), userID, req)
	stop()
	if err != nil {
		s.logger.Warn("streamed generation failed", zap.String("user_id", userID.String()), zap.Error(err))
		stream.fail(err)
		return
	}
	if err := stream.send(eventContent, gen); err != nil {
		return
	}
	stream.send(eventComplete, map[string]string{"status": "completed"}) //nolint:errcheck
}
