// Package planner splits a road trip into charging stops and recommends the
// cheapest compatible charger near each stop.
//
// Stops are placed at evenly spaced fractions of the route rather than where
// the battery would run out: one stop goes to the midpoint, N stops go to
// i/(N+1). Range planning uses 70% of the nameplate capacity, modelling a
// 10-80% charging window. Each stop is priced for that window on the chargers
// returned by a Directory, restricted to the tariffs the driver holds.
//
// Directory failures at a single stop only drop that stop's recommendation.
// Geocoding and directions failures are returned as *UpstreamError.
package planner
