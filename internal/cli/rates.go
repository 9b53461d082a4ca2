package cli

import (
	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch and print the current rate snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Rates(cmd.Context())
	},
}
