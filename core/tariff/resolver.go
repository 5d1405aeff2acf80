package tariff

import (
	"math"
	"strings"

	"github.com/kilianp07/evcharge/core/model"
)

// DefaultChargerKW substitutes a charger power the directory did not report.
const DefaultChargerKW = 50.0

// Rule maps a lower-case substring of operator/site text to a provider.
type Rule struct {
	Needle   string `json:"needle" yaml:"needle"`
	Provider string `json:"provider" yaml:"provider"`
}

// Rules is evaluated in order; the first matching rule wins.
type Rules []Rule

// Match returns the provider of the first rule whose needle is contained in
// the lower-cased text.
func (r Rules) Match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	t := strings.ToLower(text)
	for _, rule := range r {
		if rule.Needle == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(rule.Needle)) {
			return rule.Provider, true
		}
	}
	return "", false
}

// AllowList is the set of tariffs a user holds. An empty list allows every
// tariff.
type AllowList map[string]struct{}

// NewAllowList builds an allow-list from provider names.
func NewAllowList(names ...string) AllowList {
	a := make(AllowList, len(names))
	for _, n := range names {
		a[n] = struct{}{}
	}
	return a
}

// Allows reports whether provider may be used.
func (a AllowList) Allows(provider string) bool {
	if len(a) == 0 {
		return true
	}
	_, ok := a[provider]
	return ok
}

// Resolver finds the tariff applicable to a charger.
type Resolver struct {
	catalog Catalog
	rules   Rules
}

// NewResolver returns a resolver over catalog and rules. Both are used
// read-only.
func NewResolver(catalog Catalog, rules Rules) *Resolver {
	cp := make(Rules, len(rules))
	copy(cp, rules)
	return &Resolver{catalog: catalog, rules: cp}
}

// Catalog returns the underlying catalog.
func (r *Resolver) Catalog() Catalog { return r.catalog }

// ByName returns the tariff of an explicitly selected provider.
func (r *Resolver) ByName(provider string) (model.Tariff, bool) {
	return r.catalog.Lookup(provider)
}

// Infer returns the provider inferred from operator and site names.
func (r *Resolver) Infer(operator, site string) (string, bool) {
	return r.rules.Match(strings.TrimSpace(operator + " " + site))
}

// ResolveCandidate returns the tariff of a charger candidate. It reports
// false when no rule matches, the provider has no tariff in the catalog or
// the provider is not allowed.
func (r *Resolver) ResolveCandidate(c model.ChargerCandidate, allow AllowList) (model.Tariff, bool) {
	name, ok := r.Infer(c.Operator, c.Site)
	if !ok {
		return model.Tariff{}, false
	}
	if !allow.Allows(name) {
		return model.Tariff{}, false
	}
	return r.catalog.Lookup(name)
}

// ConnectorPower returns the power of the first connection of c, or
// DefaultChargerKW when it is missing or not a positive number. A reported
// 0 kW counts as unknown: directories use it for unrated connectors, and
// pricing a zero-power charger would quote a free zero-minute session.
func ConnectorPower(c model.ChargerCandidate) float64 {
	if len(c.Connections) == 0 || c.Connections[0].PowerKW == nil {
		return DefaultChargerKW
	}
	p := *c.Connections[0].PowerKW
	if p <= 0 || math.IsNaN(p) {
		return DefaultChargerKW
	}
	return p
}
