package planner

import (
	"context"

	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/tariff"
)

// SurveyRequest asks for the chargers around a position priced for one
// session.
type SurveyRequest struct {
	At         model.Coordinate      `json:"at"`
	Vehicle    model.Vehicle         `json:"vehicle"`
	Session    model.ChargingSession `json:"session"`
	Efficiency float64               `json:"efficiency"`
	Currency   string                `json:"currency"`
	RadiusKM   float64               `json:"radius_km"`
	MaxResults int                   `json:"max_results"`
	Allow      tariff.AllowList      `json:"-"`
}

// SurveyRow is one nearby charger. Tariff, Cost and Minutes are only set when
// the charger resolves to a held tariff and the session needs energy.
type SurveyRow struct {
	Name        string           `json:"name"`
	Operator    string           `json:"operator"`
	Point       model.Coordinate `json:"point"`
	DistanceKM  *float64         `json:"distance_km,omitempty"`
	EffectiveKW float64          `json:"effective_kw"`
	Tariff      string           `json:"tariff,omitempty"`
	Cost        *float64         `json:"cost,omitempty"`
	Minutes     *float64         `json:"minutes,omitempty"`
}

// Survey lists nearby chargers.
type Survey struct {
	Currency      string      `json:"currency"`
	EnergyKWh     float64     `json:"energy_kwh"`
	DistanceAdded float64     `json:"distance_added"`
	Rows          []SurveyRow `json:"rows"`
}

// Survey lists the chargers around req.At. Uncosted chargers are kept as
// points of interest. A directory failure is returned as *UpstreamError.
func (p *Planner) Survey(ctx context.Context, req SurveyRequest, rates currency.RateTable) (Survey, error) {
	radius, maxResults := req.RadiusKM, req.MaxResults
	if radius <= 0 {
		radius = 10
	}
	if maxResults <= 0 {
		maxResults = 25
	}
	display := req.Currency
	if display == "" {
		display = rates.Base()
	}
	out := Survey{Currency: display, EnergyKWh: req.Session.EnergyRequired(req.Vehicle.BatteryKWh)}
	out.DistanceAdded = out.EnergyKWh * req.Efficiency
	if p.dir == nil {
		return out, nil
	}
	candidates, err := p.dir.Nearby(ctx, req.At, radius, maxResults)
	if err != nil {
		return Survey{}, &UpstreamError{Stage: "charger directory", Err: err}
	}
	for _, c := range candidates {
		stationKW := tariff.ConnectorPower(c)
		row := SurveyRow{
			Name:        c.DisplayName(),
			Operator:    c.DisplayOperator(),
			Point:       c.Point,
			DistanceKM:  c.DistanceKM,
			EffectiveKW: min(stationKW, req.Vehicle.MaxDCKW),
		}
		if out.EnergyKWh > 0 && len(req.Allow) > 0 {
			if t, ok := p.resolver.ResolveCandidate(c, req.Allow); ok {
				q := compare.Quote(req.Vehicle, req.Session, out.EnergyKWh, stationKW, t, display, rates)
				row.Tariff = t.Provider
				row.Cost = &q.Cost
				row.Minutes = &q.Minutes
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
