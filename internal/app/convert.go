package app

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"vesrates/internal/convert"
)

// Convert performs a one-shot currency conversion against fresh rates.
func (a *App) Convert(ctx context.Context, opts ConvertOptions) error {
	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", opts.Amount, err)
	}

	from, err := convert.ParseCurrency(opts.From)
	if err != nil {
		return err
	}
	to, err := convert.ParseCurrency(opts.To)
	if err != nil {
		return err
	}

	if opts.Swap {
		from, to = to, from
	}

	snap, err := a.fetchSnapshot(ctx)
	if err != nil {
		return err
	}

	rates := convert.Rates{}
	if snap.Official != nil {
		rates.USD = snap.Official.USD
		rates.EUR = snap.Official.EUR
	}
	if snap.P2P != nil {
		rates.USDT = snap.P2P.Average
	}

	result, err := rates.Convert(amount, from, to)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s %s = %s %s\n", amount.String(), from, result.StringFixed(4), to)
	return nil
}
