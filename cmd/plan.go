package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/app"
	"github.com/kilianp07/evcharge/pkg/export"
)

var planOpts struct {
	vehicle    vehicleFlags
	efficiency float64
	currency   string
	reference  string
	cards      []string
}

var planCmd = &cobra.Command{
	Use:   "plan FROM TO",
	Short: "Plan the charging stops of a trip",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlan,
}

func init() {
	planOpts.vehicle.register(planCmd)
	planCmd.Flags().Float64Var(&planOpts.efficiency, "efficiency", 3.5, "efficiency in miles per kWh")
	planCmd.Flags().StringVar(&planOpts.currency, "currency", "", "display currency (GBP, EUR or USD)")
	planCmd.Flags().StringVar(&planOpts.reference, "reference", "", "tariff used for the whole-trip estimate")
	planCmd.Flags().StringSliceVar(&planOpts.cards, "cards", nil, "held cards")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	q := app.TripQuery{
		From:       args[0],
		To:         args[1],
		Vehicle:    planOpts.vehicle.ref(),
		Efficiency: planOpts.efficiency,
		Currency:   planOpts.currency,
		Reference:  planOpts.reference,
	}
	if cmd.Flags().Changed("cards") {
		q.Cards = planOpts.cards
	}
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(cmd, svc)

	plan, err := svc.PlanTrip(cmd.Context(), q)
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), plan,
		func(w io.Writer) error { return printPlan(w, plan) },
		func(w io.Writer) error { return export.WritePlanCSV(w, plan) })
}
