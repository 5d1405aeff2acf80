package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/evcharge/core/model"
)

var (
	// ErrNotFound is returned by a Geocoder when a query has no result.
	ErrNotFound = errors.New("location not found")
	// ErrRouteTooLong is returned by a Router when the route exceeds the
	// provider's distance limit.
	ErrRouteTooLong = errors.New("route exceeds the routing provider's distance limit")
	// ErrNoRouting is returned when routing collaborators are not configured.
	ErrNoRouting = errors.New("routing is not configured")
)

// Directory lists charging points around a position.
type Directory interface {
	Nearby(ctx context.Context, at model.Coordinate, radiusKM float64, maxResults int) ([]model.ChargerCandidate, error)
}

// Geocoder turns a free-text place or postcode into a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (model.Coordinate, error)
}

// Router computes driving directions between two coordinates.
type Router interface {
	Directions(ctx context.Context, from, to model.Coordinate) (model.Route, error)
}

// UpstreamError reports a failed collaborator call. It is recoverable: the
// caller may retry with different input.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StageName returns the failing stage.
func (e *UpstreamError) StageName() string { return e.Stage }
