package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/app"
	"github.com/kilianp07/evcharge/core/catalog"
	"github.com/kilianp07/evcharge/core/model"
)

// vehicleFlags selects a catalogue vehicle or custom battery and power figures.
type vehicleFlags struct {
	model   string
	battery float64
	maxDC   float64
}

func (f *vehicleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.model, "vehicle", "Tesla Model 3 Long Range", "vehicle model from the catalogue")
	cmd.Flags().Float64Var(&f.battery, "battery-kwh", 0, "custom battery capacity in kWh (overrides --vehicle)")
	cmd.Flags().Float64Var(&f.maxDC, "max-dc-kw", 150, "custom maximum DC power in kW")
}

func (f vehicleFlags) ref() app.VehicleRef {
	if f.battery > 0 {
		name := f.model
		if name == "" || name == "Tesla Model 3 Long Range" {
			name = catalog.CustomVehicle
		}
		return app.VehicleRef{Custom: &model.Vehicle{Model: name, BatteryKWh: f.battery, MaxDCKW: f.maxDC}}
	}
	return app.VehicleRef{Model: f.model}
}

type sessionFlags struct {
	start, target, loss float64
	noTaper             bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.start, "start", 20, "start state of charge in percent")
	cmd.Flags().Float64Var(&f.target, "target", 80, "target state of charge in percent")
	cmd.Flags().Float64Var(&f.loss, "loss", 6, "charging loss in percent")
	cmd.Flags().BoolVar(&f.noTaper, "no-taper", false, "charge at constant power")
}

func (f sessionFlags) session() model.ChargingSession {
	return model.ChargingSession{StartPct: f.start, TargetPct: f.target, LossPct: f.loss, Taper: !f.noTaper}
}

// parseOffer reads "Provider" or "Provider@kW".
func parseOffer(s string) (app.OfferQuery, error) {
	name, kw, found := strings.Cut(s, "@")
	o := app.OfferQuery{Provider: strings.TrimSpace(name)}
	if found {
		v, err := strconv.ParseFloat(strings.TrimSpace(kw), 64)
		if err != nil {
			return app.OfferQuery{}, fmt.Errorf("offer %q: bad station power", s)
		}
		o.StationKW = v
	}
	return o, nil
}
