package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/AdamBeresnev/federation-core/internal/httputil"
	"github.com/AdamBeresnev/federation-core/internal/middleware"
	"github.com/AdamBeresnev/federation-core/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type app struct {
	brackets *service.BracketService
	matches  *service.MatchService
	ratings  *service.RatingService
	logger   *slog.Logger
}

type buildBracketRequest struct {
	Participants []service.ParticipantInput `json:"participants"`
}

type startMatchRequest struct {
	Tatami *int `json:"tatami"`
}

type scheduleMatchRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Tatami      *int       `json:"tatami"`
}

type recordScoreRequest struct {
	ParticipantID uuid.UUID         `json:"participant_id"`
	Kind          bracket.ScoreKind `json:"kind"`
	Points        int               `json:"points"`
}

type scoreEventResponse struct {
	ID            uuid.UUID         `json:"id"`
	MatchID       uuid.UUID         `json:"match_id"`
	ParticipantID uuid.UUID         `json:"participant_id"`
	Kind          bracket.ScoreKind `json:"kind"`
	Points        int               `json:"points"`
	CreatedAt     time.Time         `json:"created_at"`
}

type completeMatchRequest struct {
	WinnerID uuid.UUID           `json:"winner_id"`
	Scores   service.FinalScores `json:"scores"`
}

type completeMatchResponse struct {
	Match            service.MatchView  `json:"match"`
	NextMatch        *service.MatchView `json:"next_match,omitempty"`
	BracketCompleted bool               `json:"bracket_completed"`
}

type clubRatingResponse struct {
	ClubID uuid.UUID `json:"club_id"`
	Rating int       `json:"rating"`
}

func newRouter(a *app, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(a.logger))
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))

		r.Route("/categories/{id}/bracket", func(r chi.Router) {
			r.Post("/", a.buildBracket)
			r.Get("/", a.getBracket)
		})

		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", a.getMatch)
			r.Post("/start", a.startMatch)
			r.Post("/schedule", a.scheduleMatch)
			r.Post("/scores", a.recordScore)
			r.Get("/score", a.matchScore)
			r.Post("/complete", a.completeMatch)
		})

		r.Post("/competitions/{id}/results", a.processResults)
		r.Post("/clubs/{id}/rating", a.recomputeClubRating)
	})

	return r
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid ID", err)
		return uuid.Nil, false
	}
	return id, true
}

// Participants in the body are seeded in order, without them the category's
// approved registrations are used.
func (a *app) buildBracket(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req buildBracketRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	var err error
	if len(req.Participants) > 0 {
		_, err = a.brackets.BuildBracket(r.Context(), categoryID, req.Participants)
	} else {
		_, err = a.brackets.BuildFromRegistrations(r.Context(), categoryID)
	}
	if err != nil {
		httputil.ServiceError(w, "Failed to build bracket", err)
		return
	}

	view, err := a.brackets.GetBracketView(r.Context(), categoryID)
	if err != nil {
		httputil.ServiceError(w, "Failed to load bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (a *app) getBracket(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r)
	if !ok {
		return
	}

	view, err := a.brackets.GetBracketView(r.Context(), categoryID)
	if err != nil {
		httputil.ServiceError(w, "Failed to load bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (a *app) getMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseID(w, r)
	if !ok {
		return
	}
	a.writeMatch(w, r, matchID, http.StatusOK)
}

func (a *app) writeMatch(w http.ResponseWriter, r *http.Request, matchID uuid.UUID, status int) {
	view, err := a.matches.MatchView(r.Context(), matchID)
	if err != nil {
		httputil.ServiceError(w, "Failed to load match", err)
		return
	}
	httputil.WriteJSON(w, status, view)
}

func (a *app) startMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req startMatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	if _, err := a.matches.StartMatch(r.Context(), matchID, req.Tatami); err != nil {
		httputil.ServiceError(w, "Failed to start match", err)
		return
	}
	a.writeMatch(w, r, matchID, http.StatusOK)
}

func (a *app) scheduleMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req scheduleMatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if req.ScheduledAt == nil {
		httputil.BadRequest(w, "scheduled_at is required", nil)
		return
	}

	if _, err := a.matches.ScheduleMatch(r.Context(), matchID, *req.ScheduledAt, req.Tatami); err != nil {
		httputil.ServiceError(w, "Failed to schedule match", err)
		return
	}
	a.writeMatch(w, r, matchID, http.StatusOK)
}

func (a *app) recordScore(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req recordScoreRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	event, err := a.matches.RecordScore(r.Context(), matchID, req.ParticipantID, req.Kind, req.Points)
	if err != nil {
		httputil.ServiceError(w, "Failed to record score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, scoreEventResponse{
		ID:            event.ID,
		MatchID:       event.MatchID,
		ParticipantID: event.ParticipantID,
		Kind:          event.Kind,
		Points:        event.Points,
		CreatedAt:     event.CreatedAt,
	})
}

func (a *app) matchScore(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseID(w, r)
	if !ok {
		return
	}

	score, err := a.matches.MatchScore(r.Context(), matchID)
	if err != nil {
		httputil.ServiceError(w, "Failed to load score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, score)
}

func (a *app) completeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req completeMatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if req.WinnerID == uuid.Nil {
		httputil.BadRequest(w, "winner_id is required", nil)
		return
	}

	result, err := a.matches.CompleteMatch(r.Context(), matchID, req.WinnerID, req.Scores)
	if err != nil {
		httputil.ServiceError(w, "Failed to complete match", err)
		return
	}

	resp := completeMatchResponse{
		Match:            service.NewMatchView(result.Match, result.BracketSize, nil),
		BracketCompleted: result.BracketCompleted,
	}
	if result.NextMatch != nil {
		next := service.NewMatchView(result.NextMatch, result.BracketSize, nil)
		resp.NextMatch = &next
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (a *app) processResults(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := parseID(w, r)
	if !ok {
		return
	}

	summary, err := a.ratings.ProcessCompetitionResults(r.Context(), competitionID)
	if err != nil {
		httputil.ServiceError(w, "Failed to process competition results", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (a *app) recomputeClubRating(w http.ResponseWriter, r *http.Request) {
	clubID, ok := parseID(w, r)
	if !ok {
		return
	}

	total, err := a.ratings.RecomputeClubRating(r.Context(), clubID)
	if err != nil {
		httputil.ServiceError(w, "Failed to recompute club rating", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, clubRatingResponse{ClubID: clubID, Rating: total})
}
