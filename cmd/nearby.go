package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/app"
	"github.com/kilianp07/evcharge/core/model"
)

var nearbyOpts struct {
	vehicle    vehicleFlags
	session    sessionFlags
	efficiency float64
	currency   string
	lat, lon   float64
	radius     float64
	max        int
	cards      []string
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby [PLACE]",
	Short: "List chargers near a place and price a session at each",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNearby,
}

func init() {
	nearbyOpts.vehicle.register(nearbyCmd)
	nearbyOpts.session.register(nearbyCmd)
	nearbyCmd.Flags().Float64Var(&nearbyOpts.efficiency, "efficiency", 3.5, "efficiency in miles per kWh")
	nearbyCmd.Flags().StringVar(&nearbyOpts.currency, "currency", "", "display currency (GBP, EUR or USD)")
	nearbyCmd.Flags().Float64Var(&nearbyOpts.lat, "lat", 0, "latitude, instead of PLACE")
	nearbyCmd.Flags().Float64Var(&nearbyOpts.lon, "lon", 0, "longitude, instead of PLACE")
	nearbyCmd.Flags().Float64Var(&nearbyOpts.radius, "radius", 10, "search radius in km")
	nearbyCmd.Flags().IntVar(&nearbyOpts.max, "max", 25, "maximum number of chargers")
	nearbyCmd.Flags().StringSliceVar(&nearbyOpts.cards, "cards", nil, "held cards")
	rootCmd.AddCommand(nearbyCmd)
}

func runNearby(cmd *cobra.Command, args []string) error {
	q := app.NearbyQuery{
		Vehicle:    nearbyOpts.vehicle.ref(),
		Session:    nearbyOpts.session.session(),
		Efficiency: nearbyOpts.efficiency,
		Currency:   nearbyOpts.currency,
		RadiusKM:   nearbyOpts.radius,
		MaxResults: nearbyOpts.max,
	}
	if len(args) == 1 {
		q.Place = args[0]
	}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		q.At = &model.Coordinate{Lat: nearbyOpts.lat, Lon: nearbyOpts.lon}
	}
	if cmd.Flags().Changed("cards") {
		q.Cards = nearbyOpts.cards
	}
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(cmd, svc)

	survey, err := svc.Nearby(cmd.Context(), q)
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), survey, func(w io.Writer) error { return printSurvey(w, survey) }, nil)
}
