package tariff

import (
	"fmt"

	"github.com/kilianp07/evcharge/core/model"
)

// Catalog is an immutable, ordered set of provider tariffs.
type Catalog struct {
	names   []string
	tariffs map[string]model.Tariff
}

// NewCatalog builds a catalog preserving the order of tariffs. Duplicate or
// empty provider names are rejected.
func NewCatalog(tariffs []model.Tariff) (Catalog, error) {
	c := Catalog{names: make([]string, 0, len(tariffs)), tariffs: make(map[string]model.Tariff, len(tariffs))}
	for _, t := range tariffs {
		if t.Provider == "" {
			return Catalog{}, fmt.Errorf("tariff without provider name")
		}
		if _, ok := c.tariffs[t.Provider]; ok {
			return Catalog{}, fmt.Errorf("duplicate tariff for %s", t.Provider)
		}
		if t.EnergyPrice < 0 || t.TimePrice < 0 || t.SessionFee < 0 {
			return Catalog{}, fmt.Errorf("tariff %s has negative prices", t.Provider)
		}
		c.names = append(c.names, t.Provider)
		c.tariffs[t.Provider] = t
	}
	return c, nil
}

// Lookup returns the tariff of a provider.
func (c Catalog) Lookup(provider string) (model.Tariff, bool) {
	t, ok := c.tariffs[provider]
	return t, ok
}

// Names returns the provider names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Tariffs returns all tariffs in catalog order.
func (c Catalog) Tariffs() []model.Tariff {
	out := make([]model.Tariff, len(c.names))
	for i, n := range c.names {
		out[i] = c.tariffs[n]
	}
	return out
}

// Len returns the number of providers.
func (c Catalog) Len() int { return len(c.names) }

// PublicNames returns the providers that are not home tariffs. It is the
// default set of cards a user is assumed to hold.
func (c Catalog) PublicNames() []string {
	var out []string
	for _, n := range c.names {
		if !c.tariffs[n].IsHome() {
			out = append(out, n)
		}
	}
	return out
}
