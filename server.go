package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"seminar/grouping"
)

// session is one engine lifetime for a seminar. Its encounter history lives
// only in memory; a restart opens a new session.
type session struct {
	mu     sync.Mutex
	id     int64
	engine *grouping.Engine
	rounds int
}

type server struct {
	cfg           config
	store         store
	logger        *zap.Logger
	metrics       *metrics
	policy        grouping.CommitPolicy
	validateToken tokenValidator

	mu       sync.Mutex
	sessions map[int64]*session
}

func newServer(cfg config, st store, logger *zap.Logger) (*server, error) {
	policy, err := grouping.ParseCommitPolicy(cfg.CommitPolicy)
	if err != nil {
		return nil, err
	}
	return &server{
		cfg:           cfg,
		store:         st,
		logger:        logger,
		metrics:       newMetrics(),
		policy:        policy,
		validateToken: idtoken.Validate,
		sessions:      map[int64]*session{},
	}, nil
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("GET /api/seminars", s.handleListSeminars)
	mux.HandleFunc("POST /api/seminars", s.handleCreateSeminar)
	mux.HandleFunc("DELETE /api/seminars/{seminarID}", s.handleDeleteSeminar)
	mux.HandleFunc("GET /api/seminars/{seminarID}/rounds", s.handleListRounds)
	mux.HandleFunc("POST /api/seminars/{seminarID}/rounds", s.handleCreateRound)
	mux.HandleFunc("GET /api/seminars/{seminarID}/participants/{participantID}/encounters", s.handleEncounters)
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})
	return mux
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// session returns the live session for a seminar, opening one on first use.
func (s *server) session(ctx context.Context, seminarID int64) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[seminarID]; ok {
		return sess, nil
	}

	sm, err := s.store.GetSeminar(ctx, seminarID)
	if err != nil {
		return nil, err
	}
	engine, err := grouping.New(sm.ParticipantsCount,
		grouping.WithLogger(s.logger.With(zap.Int64("seminar_id", seminarID))),
		grouping.WithCommitPolicy(s.policy))
	if err != nil {
		return nil, err
	}
	id, err := s.store.CreateSession(ctx, seminarID, s.policy.String())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	sess := &session{id: id, engine: engine}
	s.sessions[seminarID] = sess
	s.metrics.sessions.Inc()
	s.logger.Info("session opened",
		zap.Int64("seminar_id", seminarID),
		zap.Int64("session_id", id),
		zap.Int("participants_count", sm.ParticipantsCount))
	return sess, nil
}

func (s *server) dropSession(seminarID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[seminarID]; ok {
		delete(s.sessions, seminarID)
		s.metrics.sessions.Dec()
	}
}

func (s *server) handleListSeminars(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	seminars, err := s.store.ListSeminars(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, seminars)
}

func (s *server) handleCreateSeminar(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var body struct {
		Name              string `json:"name"`
		ParticipantsCount int    `json:"participants_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if body.ParticipantsCount <= 0 {
		http.Error(w, "participants_count must be positive", http.StatusBadRequest)
		return
	}
	sm, err := s.store.CreateSeminar(r.Context(), body.Name, body.ParticipantsCount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sm)
}

func (s *server) handleDeleteSeminar(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	seminarID, ok := pathID(w, r, "seminarID")
	if !ok {
		return
	}
	if err := s.store.DeleteSeminar(r.Context(), seminarID); err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "seminar not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.dropSession(seminarID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	seminarID, ok := pathID(w, r, "seminarID")
	if !ok {
		return
	}
	if _, err := s.store.GetSeminar(r.Context(), seminarID); err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "seminar not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rounds, err := s.store.ListRounds(r.Context(), seminarID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

func (s *server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	seminarID, ok := pathID(w, r, "seminarID")
	if !ok {
		return
	}
	var body struct {
		TeamsCount int `json:"teams_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "teams_count is required", http.StatusBadRequest)
		return
	}

	sess, err := s.session(r.Context(), seminarID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "seminar not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	partition, err := sess.engine.MakeTeams(body.TeamsCount)
	var assignErr *grouping.AssignmentError
	switch {
	case err == nil:
	case errors.Is(err, grouping.ErrInvalidArgument):
		s.metrics.roundsFailed.WithLabelValues("invalid_argument").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.As(err, &assignErr):
		s.metrics.roundsFailed.WithLabelValues("assignment_failure").Inc()
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":          err.Error(),
			"participant_id": assignErr.ParticipantID,
			"rounds":         sess.rounds,
		})
		return
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rd := round{
		SessionID:  sess.id,
		Number:     sess.rounds + 1,
		TeamsCount: body.TeamsCount,
		Teams:      make([][]int, len(partition.Teams)),
	}
	for i, team := range partition.Teams {
		rd.Teams[i] = team
	}
	sess.rounds++
	s.metrics.roundsMade.Inc()

	saved, err := s.store.CreateRound(r.Context(), rd)
	if err != nil {
		// The encounters are already recorded in the engine.
		s.logger.Error("failed to archive round",
			zap.Int64("session_id", sess.id),
			zap.Int("number", rd.Number),
			zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleEncounters(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	seminarID, ok := pathID(w, r, "seminarID")
	if !ok {
		return
	}
	participantID, ok := pathID(w, r, "participantID")
	if !ok {
		return
	}

	sess, err := s.session(r.Context(), seminarID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "seminar not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ids, ok := sess.engine.Encountered(int(participantID))
	if !ok {
		http.Error(w, "participant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"participant_id": participantID,
		"session_id":     sess.id,
		"encountered":    ids,
	})
}
