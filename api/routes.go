package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/kilianp07/evcharge/app"
	"github.com/kilianp07/evcharge/core/model"
)

func (h *Handler) compare(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q app.CompareQuery
	if err := decode(w, r, &q); err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.b.Compare(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) compareCards(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q app.CompareQuery
	if err := decode(w, r, &q); err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.b.CompareCards(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q app.TripQuery
	if err := decode(w, r, &q); err != nil {
		h.writeError(w, err)
		return
	}
	plan, err := h.b.PlanTrip(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// nearby reads the survey from the query string:
// place or lat/lon, vehicle or battery_kwh/max_dc_kw, start, target, loss,
// taper, efficiency, currency, radius_km, max_results and cards (comma
// separated).
func (h *Handler) nearby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := nearbyQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	survey, err := h.b.Nearby(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func nearbyQuery(r *http.Request) (app.NearbyQuery, error) {
	v := r.URL.Query()
	p := params{v: v}
	q := app.NearbyQuery{
		Place:    v.Get("place"),
		Currency: v.Get("currency"),
		Vehicle:  app.VehicleRef{Model: v.Get("vehicle")},
		Session: model.ChargingSession{
			StartPct:  p.float("start", 20),
			TargetPct: p.float("target", 80),
			LossPct:   p.float("loss", 6),
			Taper:     p.bool("taper", true),
		},
		Efficiency: p.float("efficiency", 3.5),
		RadiusKM:   p.float("radius_km", 0),
		MaxResults: int(p.float("max_results", 0)),
	}
	if v.Has("lat") || v.Has("lon") {
		q.At = &model.Coordinate{Lat: p.float("lat", 0), Lon: p.float("lon", 0)}
	}
	if v.Has("battery_kwh") {
		q.Vehicle.Custom = &model.Vehicle{
			Model:      v.Get("vehicle"),
			BatteryKWh: p.float("battery_kwh", 0),
			MaxDCKW:    p.float("max_dc_kw", 0),
		}
	}
	if cards := v.Get("cards"); cards != "" {
		q.Cards = strings.Split(cards, ",")
		for i := range q.Cards {
			q.Cards[i] = strings.TrimSpace(q.Cards[i])
		}
	}
	return q, p.err
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.b.Rates(r.Context()).Snapshot())
}

func (h *Handler) vehicles(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.b.Vehicles())
}

type provider struct {
	Provider    string  `json:"provider"`
	Currency    string  `json:"currency"`
	EnergyPrice float64 `json:"energy_price"`
	TimePrice   float64 `json:"time_price"`
	SessionFee  float64 `json:"session_fee"`
	DefaultKW   float64 `json:"default_kw"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category,omitempty"`
	Network     string  `json:"network,omitempty"`
}

func (h *Handler) providers(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	tariffs := h.b.Tariffs()
	out := make([]provider, 0, len(tariffs))
	for _, t := range tariffs {
		out = append(out, provider{
			Provider: t.Provider, Currency: t.Currency,
			EnergyPrice: t.EnergyPrice, TimePrice: t.TimePrice, SessionFee: t.SessionFee,
			DefaultKW: t.DefaultKW, Kind: t.Kind.String(), Category: t.Category, Network: t.Network,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// params parses query values and keeps the first error.
type params struct {
	v   interface{ Get(string) string }
	err error
}

func (p *params) float(key string, def float64) float64 {
	s := p.v.Get(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = invalidParam(key, s)
	}
	return f
}

func (p *params) bool(key string, def bool) bool {
	s := p.v.Get(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil && p.err == nil {
		p.err = invalidParam(key, s)
	}
	return b
}
