package cli

import (
	"github.com/spf13/cobra"

	"vesrates/internal/app"
)

var convertSwap bool

var convertCmd = &cobra.Command{
	Use:   "convert AMOUNT FROM TO",
	Short: "Convert between VES, USD, EUR, and USDT at current rates",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ConvertOptions{
			Amount: args[0],
			From:   args[1],
			To:     args[2],
			Swap:   convertSwap,
		}

		return getApp().Convert(cmd.Context(), opts)
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertSwap, "swap", false, "Exchange the from/to currencies before converting")
}
