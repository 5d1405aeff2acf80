package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/planner"
)

func TestWriteResultCSV(t *testing.T) {
	res := compare.Result{Currency: "GBP", Entries: []compare.Entry{
		{Provider: "Pod Point", Currency: "GBP", EffectiveKW: 22, Minutes: 120, NativeCost: 30, Cost: 30, CostPer100: 15.5},
		{Provider: "Electra+", Currency: "EUR", EffectiveKW: 150, Minutes: 31.25, NativeCost: 40, Cost: 34.8},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, res))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Pod Point", "22", "120", "30", "GBP", "30", "GBP", "15.5"}, rows[1])
	assert.Equal(t, "EUR", rows[2][5])
	assert.Equal(t, "31.25", rows[2][3])
}

func TestWritePlanCSV(t *testing.T) {
	plan := planner.TripPlan{Currency: "EUR", Stops: []model.RouteStop{{
		Index: 1,
		Recommendation: &model.StopRecommendation{
			ChargerName: "Tesco Extra", Operator: "Pod Point", Tariff: "Pod Point",
			Point: model.Coordinate{Lat: 52.5, Lon: -1.25}, PowerKW: 7, Minutes: 300, Cost: 41.2,
		},
	}}}
	var buf bytes.Buffer
	require.NoError(t, WritePlanCSV(&buf, plan))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2", "52.5", "-1.25", "Tesco Extra", "Pod Point", "Pod Point", "7", "300", "41.2", "EUR"}, rows[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"stops": 2}))
	assert.JSONEq(t, `{"stops":2}`, buf.String())
}
