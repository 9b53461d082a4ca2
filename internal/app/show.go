package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// Show prints the most recent stored samples.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore := a.openStore()
	defer closeStore()
	if store == nil {
		return errors.New("history database unavailable; cannot show samples")
	}

	series := store.Load(ctx, time.Now())
	if len(series) == 0 {
		fmt.Fprintln(os.Stdout, "no samples stored yet")
		return nil
	}

	if opts.Limit > 0 && len(series) > opts.Limit {
		series = series[len(series)-opts.Limit:]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time\tBuy\tSell\tAverage")

	for _, sample := range series {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\n",
			sample.Time().Format(time.RFC3339),
			formatDecimal(sample.BuyPrice, 2),
			formatDecimal(sample.SellPrice, 2),
			formatDecimal(sample.AveragePrice, 2),
		)
	}

	return writer.Flush()
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
