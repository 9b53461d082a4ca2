package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Rates performs one aggregation cycle and prints the merged snapshot.
func (a *App) Rates(ctx context.Context) error {
	snap, err := a.fetchSnapshot(ctx)
	if err != nil {
		return err
	}

	if snap.Official == nil && snap.P2P == nil {
		return fmt.Errorf("no rate source reachable")
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Source\tRate\tAs of")

	if snap.Official != nil {
		fmt.Fprintf(writer, "BCV USD\t%s Bs\t%s\n",
			formatDecimal(snap.Official.USD, 2),
			snap.Official.AsOf.Format(time.RFC3339),
		)
		if snap.Official.EUR.Sign() > 0 {
			fmt.Fprintf(writer, "BCV EUR\t%s Bs\t%s\n",
				formatDecimal(snap.Official.EUR, 2),
				snap.Official.AsOf.Format(time.RFC3339),
			)
		}
	}

	if snap.P2P != nil {
		fmt.Fprintf(writer, "USDT buy\t%s Bs\t%s\n",
			formatDecimal(snap.P2P.Buy, 2),
			snap.P2P.AsOf.Format(time.RFC3339),
		)
		fmt.Fprintf(writer, "USDT sell\t%s Bs\t%s\n",
			formatDecimal(snap.P2P.Sell, 2),
			snap.P2P.AsOf.Format(time.RFC3339),
		)
		fmt.Fprintf(writer, "USDT avg\t%s Bs\t%s\n",
			formatDecimal(snap.P2P.Average, 2),
			snap.P2P.AsOf.Format(time.RFC3339),
		)
	}

	return writer.Flush()
}
