package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/app"
	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/pkg/export"
)

var compareOpts struct {
	vehicle    vehicleFlags
	session    sessionFlags
	efficiency float64
	currency   string
	offers     []string
	cards      []string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the cost of a charge across providers",
	Long: `Compare prices one session with every --provider (optionally "Name@kW").
Without --provider every held card is compared at its default power; --cards
restricts the held cards, which default to every public provider.`,
	RunE: runCompare,
}

func init() {
	compareOpts.vehicle.register(compareCmd)
	compareOpts.session.register(compareCmd)
	compareCmd.Flags().Float64Var(&compareOpts.efficiency, "efficiency", 3.5, "efficiency in miles per kWh")
	compareCmd.Flags().StringVar(&compareOpts.currency, "currency", "", "display currency (GBP, EUR or USD)")
	compareCmd.Flags().StringArrayVar(&compareOpts.offers, "provider", nil, "provider to compare, as Name or Name@kW")
	compareCmd.Flags().StringSliceVar(&compareOpts.cards, "cards", nil, "held cards")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	q := app.CompareQuery{
		Vehicle:    compareOpts.vehicle.ref(),
		Session:    compareOpts.session.session(),
		Efficiency: compareOpts.efficiency,
		Currency:   compareOpts.currency,
	}
	if cmd.Flags().Changed("cards") {
		q.Cards = compareOpts.cards
	}
	for _, s := range compareOpts.offers {
		o, err := parseOffer(s)
		if err != nil {
			return err
		}
		q.Offers = append(q.Offers, o)
	}

	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(cmd, svc)

	var res compare.Result
	if len(q.Offers) > 0 {
		res, err = svc.Compare(cmd.Context(), q)
	} else {
		res, err = svc.CompareCards(cmd.Context(), q)
	}
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), res,
		func(w io.Writer) error { return printResult(w, res) },
		func(w io.Writer) error { return export.WriteResultCSV(w, res) })
}
