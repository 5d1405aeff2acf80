package tariff

import (
	"testing"

	"github.com/kilianp07/evcharge/core/model"
)

func ptr(f float64) *float64 { return &f }

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	cat, err := NewCatalog([]model.Tariff{
		{Provider: "BP Pulse PAYG", EnergyPrice: 0.87, Currency: "GBP", DefaultKW: 150},
		{Provider: "Pod Point", EnergyPrice: 0.69, Currency: "GBP", DefaultKW: 75},
		{Provider: "Home", EnergyPrice: 0.08, Currency: "GBP", DefaultKW: 7, Kind: model.KindHome},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return NewResolver(cat, Rules{
		{Needle: "bp pulse", Provider: "BP Pulse PAYG"},
		{Needle: "pod point", Provider: "Pod Point"},
		{Needle: "pulse", Provider: "Pod Point"},
		{Needle: "ghost", Provider: "Ghost Network"},
	})
}

func TestInferFirstMatchWins(t *testing.T) {
	r := testResolver(t)
	cases := []struct {
		operator, site string
		want           string
		ok             bool
	}{
		{"BP Pulse (UK)", "", "BP Pulse PAYG", true},
		{"", "Tesco Pod Point Bay", "Pod Point", true},
		{"Pulse Energy", "", "Pod Point", true},
		{"Unknown Ltd", "Car park", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		got, ok := r.Infer(c.operator, c.site)
		if got != c.want || ok != c.ok {
			t.Errorf("Infer(%q,%q) = %q,%v want %q,%v", c.operator, c.site, got, ok, c.want, c.ok)
		}
	}
}

func TestInferCombinesOperatorAndSite(t *testing.T) {
	r := testResolver(t)
	// Needle spans the join between operator and site text.
	got, ok := r.Infer("BP", "Pulse Hub")
	if !ok || got != "BP Pulse PAYG" {
		t.Fatalf("expected BP Pulse PAYG, got %q %v", got, ok)
	}
}

func TestResolveCandidateAllowList(t *testing.T) {
	r := testResolver(t)
	c := model.ChargerCandidate{Operator: "bp pulse"}

	if _, ok := r.ResolveCandidate(c, nil); !ok {
		t.Fatal("empty allow-list must allow every tariff")
	}
	if _, ok := r.ResolveCandidate(c, NewAllowList("Pod Point")); ok {
		t.Fatal("tariff outside the allow-list must be excluded")
	}
	tr, ok := r.ResolveCandidate(c, NewAllowList("BP Pulse PAYG"))
	if !ok || tr.EnergyPrice != 0.87 {
		t.Fatalf("unexpected resolution %+v %v", tr, ok)
	}
}

func TestResolveCandidateUnknownPreset(t *testing.T) {
	r := testResolver(t)
	if _, ok := r.ResolveCandidate(model.ChargerCandidate{Site: "Ghost charger"}, nil); ok {
		t.Fatal("rule pointing at a missing tariff must not resolve")
	}
}

func TestByName(t *testing.T) {
	r := testResolver(t)
	if _, ok := r.ByName("Pod Point"); !ok {
		t.Fatal("expected Pod Point")
	}
	if _, ok := r.ByName("pod point"); ok {
		t.Fatal("explicit selection is exact")
	}
}

func TestConnectorPower(t *testing.T) {
	cases := []struct {
		name string
		c    model.ChargerCandidate
		want float64
	}{
		{"no connections", model.ChargerCandidate{}, DefaultChargerKW},
		{"nil power", model.ChargerCandidate{Connections: []model.Connection{{}}}, DefaultChargerKW},
		{"zero power", model.ChargerCandidate{Connections: []model.Connection{{PowerKW: ptr(0)}}}, DefaultChargerKW},
		{"reported", model.ChargerCandidate{Connections: []model.Connection{{PowerKW: ptr(150)}, {PowerKW: ptr(350)}}}, 150},
	}
	for _, c := range cases {
		if got := ConnectorPower(c.c); got != c.want {
			t.Errorf("%s: expected %v got %v", c.name, c.want, got)
		}
	}
}

func TestCatalogValidation(t *testing.T) {
	if _, err := NewCatalog([]model.Tariff{{Provider: "a"}, {Provider: "a"}}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := NewCatalog([]model.Tariff{{}}); err == nil {
		t.Fatal("expected missing name error")
	}
	if _, err := NewCatalog([]model.Tariff{{Provider: "neg", EnergyPrice: -1}}); err == nil {
		t.Fatal("expected negative price error")
	}
}

func TestCatalogOrder(t *testing.T) {
	r := testResolver(t)
	names := r.Catalog().Names()
	if len(names) != 3 || names[0] != "BP Pulse PAYG" || names[2] != "Home" {
		t.Fatalf("unexpected order %v", names)
	}
	pub := r.Catalog().PublicNames()
	if len(pub) != 2 {
		t.Fatalf("expected 2 public tariffs, got %v", pub)
	}
}
