// Package api exposes the comparison, planning and catalogue operations over
// HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/kilianp07/evcharge/app"
	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/planner"
	"github.com/kilianp07/evcharge/infra/journal"
	"github.com/kilianp07/evcharge/infra/logger"
)

// Backend is the set of operations served by the API. *app.Service
// implements it.
type Backend interface {
	Compare(ctx context.Context, q app.CompareQuery) (compare.Result, error)
	CompareCards(ctx context.Context, q app.CompareQuery) (compare.Result, error)
	PlanTrip(ctx context.Context, q app.TripQuery) (planner.TripPlan, error)
	Nearby(ctx context.Context, q app.NearbyQuery) (planner.Survey, error)
	Rates(ctx context.Context) currency.RateTable
	Vehicles() []model.Vehicle
	Tariffs() []model.Tariff
	Journal() journal.Store
}

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Handler serves the /api routes.
type Handler struct {
	b   Backend
	log logger.Logger
}

// NewHandler returns a handler backed by b.
func NewHandler(b Backend, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{b: b, log: log}
}

// NewRouter registers every route. The journal is exposed under
// /api/journal when the backend has one; token protects it when non-empty.
func NewRouter(b Backend, token string) *httprouter.Router {
	router := httprouter.New()
	NewHandler(b, logger.New("api")).Register(router)
	if store := b.Journal(); store != nil {
		router.Handler(http.MethodGet, "/api/journal", NewJournalHandler(store, token))
	}
	return router
}

// Register adds the routes to router.
func (h *Handler) Register(router *httprouter.Router) {
	router.POST("/api/compare", h.compare)
	router.POST("/api/compare/cards", h.compareCards)
	router.POST("/api/plan", h.plan)
	router.GET("/api/nearby", h.nearby)
	router.GET("/api/rates", h.rates)
	router.GET("/api/vehicles", h.vehicles)
	router.GET("/api/providers", h.providers)
}

type errorBody struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status: 400 for request errors, 502 for failed
// collaborators and 500 otherwise.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError
	var up *planner.UpstreamError
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.As(err, &up):
		status = http.StatusBadGateway
		body.Stage = up.Stage
	case errors.Is(err, planner.ErrNoRouting):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		h.log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", app.ErrInvalidInput, err)
	}
	return nil
}

var _ Backend = (*app.Service)(nil)
