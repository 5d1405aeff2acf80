package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/core/catalog"
	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/planner"
)

// execute runs rootCmd with args after restoring every flag to its default,
// so values from an earlier run in the same process do not leak in.
func execute(args ...string) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestParseOffer(t *testing.T) {
	o, err := parseOffer("Freshmile@22")
	require.NoError(t, err)
	assert.Equal(t, "Freshmile", o.Provider)
	assert.Equal(t, 22.0, o.StationKW)

	o, err = parseOffer("Pod Point")
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.StationKW)

	_, err = parseOffer("Pod Point@fast")
	assert.Error(t, err)
}

func TestVehicleFlags(t *testing.T) {
	f := vehicleFlags{model: "Tesla Model 3 Long Range", battery: 64, maxDC: 77}
	ref := f.ref()
	require.NotNil(t, ref.Custom)
	assert.Equal(t, catalog.CustomVehicle, ref.Custom.Model)

	f = vehicleFlags{model: "MG4 Long Range"}
	assert.Equal(t, "MG4 Long Range", f.ref().Model)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	res := compare.Result{
		Currency: "GBP", EnergyKWh: 50.88, DistanceAdded: 178.08,
		Entries: []compare.Entry{
			{Provider: "Home - Octopus Intelligent", EffectiveKW: 7, Minutes: 411.4, Cost: 4.07},
			{Provider: "Freshmile", EffectiveKW: 50, Minutes: 57.6, Cost: 13.572},
		},
		Winner: "Home - Octopus Intelligent", RunnerUp: "Freshmile", Savings: 9.5016, SavingsPct: 70.01,
		RateStatus: currency.StatusLive,
	}
	require.NoError(t, printResult(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "live rates")
	assert.Contains(t, out, "6h 51m")
	assert.Contains(t, out, "58 min")
	assert.Contains(t, out, "£13.57")
	assert.Contains(t, out, "saving £9.50 (70.0%) over Freshmile")
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	plan := planner.TripPlan{
		DistanceMiles: 400, DurationMin: 390, StopsRequired: 2, EnergyKWh: 114.3,
		EstimatedCost: 78.86, ReferenceTariff: "Pod Point", Currency: "GBP", RateStatus: currency.StatusFallback,
		Stops: []model.RouteStop{{Index: 0, Recommendation: &model.StopRecommendation{
			ChargerName: "Tesco", Operator: "Pod Point", Tariff: "Pod Point", PowerKW: 22, Cost: 40.96, Minutes: 171,
		}}},
		Unresolved: []int{1},
		StopsCost:  40.96, StopsMinutes: 171,
	}
	require.NoError(t, printPlan(&buf, plan))
	out := buf.String()
	assert.Contains(t, out, "2 stop(s) required")
	assert.Contains(t, out, "6h 30m driving")
	assert.Contains(t, out, "fallback rates")
	assert.Contains(t, out, "no costable charger nearby")
	assert.Contains(t, out, "Stops total £40.96, 2h 51m charging")
}

func TestPrintSurvey(t *testing.T) {
	var buf bytes.Buffer
	cost, minutes, dist := 12.5, 40.0, 1.25
	s := planner.Survey{Currency: "EUR", Rows: []planner.SurveyRow{
		{Name: "Hall", Operator: "Village Hall", EffectiveKW: 50},
		{Name: "Ionity", Operator: "IONITY", DistanceKM: &dist, EffectiveKW: 150, Tariff: "Electra+", Cost: &cost, Minutes: &minutes},
	}}
	require.NoError(t, printSurvey(&buf, s))
	out := buf.String()
	assert.Contains(t, out, "€12.50")
	assert.Contains(t, out, "1.2 km")
	assert.Contains(t, out, "40 min")

	buf.Reset()
	require.NoError(t, printSurvey(&buf, planner.Survey{}))
	assert.Equal(t, "No chargers found\n", buf.String())
}

func TestPrintRates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRates(&buf, currency.FallbackTable()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "GBP")
	assert.Contains(t, lines[2], "USD")
}

func TestCompareCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"EUR","date":"2026-10-16","rates":{"GBP":0.85,"USD":1.1}}`))
	}))
	defer srv.Close()
	t.Setenv("K_RATES__URL", srv.URL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	err := execute("compare", "--config", "testdata/none.yaml", "--vehicle", "MG4 Long Range",
		"--provider", "Pod Point", "--provider", "Electra+@50", "--currency", "EUR")
	require.Error(t, err, "explicit config path must exist")

	out.Reset()
	require.NoError(t, execute("compare", "--config", "", "--vehicle", "MG4 Long Range",
		"--provider", "Pod Point", "--provider", "Electra+@50", "--currency", "EUR"))
	assert.Contains(t, out.String(), "live rates")
	rows := 0
	for _, l := range strings.Split(out.String(), "\n") {
		if strings.Contains(l, " kW") {
			rows++
		}
	}
	assert.Equal(t, 2, rows, "each provider is listed once")
	m := regexp.MustCompile(`(?m)^(.+) is cheapest, saving .* over (.+)$`).FindStringSubmatch(out.String())
	require.Len(t, m, 3)
	assert.NotEqual(t, m[1], m[2])
}

func TestVehiclesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	require.NoError(t, execute("vehicles", "--config", ""))
	assert.Contains(t, out.String(), "Polestar 2 Long Range")
	assert.Contains(t, out.String(), catalog.CustomVehicle)
}

func TestRatesCommandJSON(t *testing.T) {
	t.Setenv("K_RATES__URL", "http://127.0.0.1:1/latest")
	t.Setenv("K_RATES__TIMEOUT_SECONDS", "1")
	t.Cleanup(func() { output = "table" })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	require.NoError(t, execute("rates", "--config", "", "-o", "json"))
	assert.JSONEq(t, `{"base":"EUR","rates":{"EUR":1,"GBP":0.87,"USD":1.1},"status":"fallback","date":"fallback"}`, out.String())
}

func TestEmitRejectsUnsupportedFormat(t *testing.T) {
	output = "csv"
	t.Cleanup(func() { output = "table" })
	err := emit(&bytes.Buffer{}, nil, func(io.Writer) error { return nil }, nil)
	assert.Error(t, err)
}
