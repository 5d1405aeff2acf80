package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List the vehicle database",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)
		vehicles := svc.Vehicles()
		return emit(cmd.OutOrStdout(), vehicles, func(w io.Writer) error { return printVehicles(w, vehicles) }, nil)
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the provider tariffs",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)
		tariffs := svc.Tariffs()
		return emit(cmd.OutOrStdout(), tariffs, func(w io.Writer) error { return printTariffs(w, tariffs) }, nil)
	},
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the exchange rates in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)
		rt := svc.Rates(cmd.Context())
		return emit(cmd.OutOrStdout(), rt.Snapshot(), func(w io.Writer) error { return printRates(w, rt) }, nil)
	},
}

func init() {
	rootCmd.AddCommand(vehiclesCmd, providersCmd, ratesCmd)
}
