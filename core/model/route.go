package model

// Route is the result of a directions lookup.
type Route struct {
	DistanceKM  float64      `json:"distance_km"`
	DurationMin float64      `json:"duration_min"`
	Geometry    []Coordinate `json:"geometry"`
}

// KMToMiles converts kilometres to miles.
const KMToMiles = 0.621371

// DistanceMiles returns the route distance in miles.
func (r Route) DistanceMiles() float64 { return r.DistanceKM * KMToMiles }

// StopRecommendation is the cheapest compatible charger found near a stop.
type StopRecommendation struct {
	ChargerName string     `json:"charger_name"`
	Operator    string     `json:"operator"`
	Point       Coordinate `json:"point"`
	PowerKW     float64    `json:"power_kw"` // effective power
	Tariff      string     `json:"tariff"`
	Cost        float64    `json:"cost"` // in the display currency
	Minutes     float64    `json:"minutes"`
}

// RouteStop is a planned charging break along a route.
type RouteStop struct {
	Index          int                 `json:"index"`
	Fraction       float64             `json:"fraction"`
	Point          Coordinate          `json:"point"`
	Recommendation *StopRecommendation `json:"recommendation,omitempty"`
}
