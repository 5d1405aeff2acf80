package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func table() RateTable {
	return NewRateTable("EUR", map[string]float64{"GBP": 0.87, "USD": 1.10}, StatusLive, "2026-10-16")
}

func TestConvertScenario(t *testing.T) {
	tb := NewRateTable("EUR", map[string]float64{"EUR": 1.0, "GBP": 0.87}, StatusLive, "")
	gbp := Convert(10, "EUR", "GBP", tb)
	assert.InDelta(t, 8.70, gbp, 1e-9)
	assert.InDelta(t, 10.0, Convert(gbp, "GBP", "EUR", tb), 1e-9)
}

func TestConvertRoundTrip(t *testing.T) {
	tb := table()
	codes := []string{"EUR", "GBP", "USD"}
	for _, a := range codes {
		for _, b := range codes {
			for _, x := range []float64{0, 1, 12.34, 987.65} {
				back := Convert(Convert(x, a, b, tb), b, a, tb)
				assert.InDelta(t, x, back, 1e-9, "%s->%s->%s", a, b, a)
			}
		}
	}
}

func TestConvertCrossRate(t *testing.T) {
	// 11 USD -> 10 EUR -> 8.7 GBP
	assert.InDelta(t, 8.7, table().Convert(11, "USD", "GBP"), 1e-9)
}

func TestConvertIdentity(t *testing.T) {
	if got := Convert(42, "JPY", "JPY", RateTable{}); got != 42 {
		t.Fatalf("expected identity, got %v", got)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	tb := table()
	if got := Convert(5, "CHF", "GBP", tb); got != 5 {
		t.Fatalf("expected unchanged amount for unknown source, got %v", got)
	}
	if got := Convert(5, "GBP", "CHF", tb); got != 5 {
		t.Fatalf("expected unchanged amount for unknown target, got %v", got)
	}
}

func TestBaseAlwaysOne(t *testing.T) {
	tb := NewRateTable("EUR", map[string]float64{"EUR": 3, "GBP": 0.9}, StatusLive, "")
	r, ok := tb.Rate("EUR")
	if !ok || r != 1 {
		t.Fatalf("expected base rate 1, got %v %v", r, ok)
	}
}

func TestTableIsImmutable(t *testing.T) {
	src := map[string]float64{"GBP": 0.87}
	tb := NewRateTable("EUR", src, StatusLive, "")
	src["GBP"] = 2
	rates := tb.Rates()
	rates["GBP"] = 3
	if r, _ := tb.Rate("GBP"); r != 0.87 {
		t.Fatalf("table mutated through shared map: %v", r)
	}
}

func TestFallbackTable(t *testing.T) {
	fb := FallbackTable()
	if fb.Status() != StatusFallback || fb.Base() != "EUR" || fb.Date() != "fallback" {
		t.Fatalf("unexpected fallback metadata %+v", fb.Snapshot())
	}
	for code, want := range map[string]float64{"EUR": 1, "GBP": 0.87, "USD": 1.10} {
		if got, ok := fb.Rate(code); !ok || got != want {
			t.Errorf("%s: expected %v got %v", code, want, got)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tb := table()
	back := tb.Snapshot().Table()
	assert.Equal(t, tb.Snapshot(), back.Snapshot())
}
