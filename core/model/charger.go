package model

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Connection is a connector record reported by a charger directory. PowerKW
// is nil when the directory did not report a usable number.
type Connection struct {
	PowerKW *float64 `json:"power_kw,omitempty"`
}

// ChargerCandidate is a charging point returned by a charger directory.
type ChargerCandidate struct {
	ID          string       `json:"id,omitempty"`
	Operator    string       `json:"operator,omitempty"`
	Site        string       `json:"site,omitempty"`
	Point       Coordinate   `json:"point"`
	DistanceKM  *float64     `json:"distance_km,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
}

// DisplayOperator returns the operator name, the site name or "Unknown".
func (c ChargerCandidate) DisplayOperator() string {
	if c.Operator != "" {
		return c.Operator
	}
	if c.Site != "" {
		return c.Site
	}
	return "Unknown"
}

// DisplayName returns the site name, falling back to the operator.
func (c ChargerCandidate) DisplayName() string {
	if c.Site != "" {
		return c.Site
	}
	return c.DisplayOperator()
}
