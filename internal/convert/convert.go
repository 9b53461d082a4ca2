package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency enumerates the convertible units.
type Currency string

const (
	VES  Currency = "VES"
	USD  Currency = "USD"
	EUR  Currency = "EUR"
	USDT Currency = "USDT"
)

// ErrRateUnavailable indicates a conversion leg has no known rate yet.
var ErrRateUnavailable = errors.New("rate unavailable")

// Rates holds each currency's rate to the local unit. VES is implicitly 1.
type Rates struct {
	USD  decimal.Decimal
	EUR  decimal.Decimal
	USDT decimal.Decimal
}

// ParseCurrency normalises a user-supplied currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case VES:
		return VES, nil
	case USD:
		return USD, nil
	case EUR:
		return EUR, nil
	case USDT:
		return USDT, nil
	}
	return "", fmt.Errorf("unknown currency %q (expected VES, USD, EUR, or USDT)", s)
}

// RateToVES returns the given currency's rate to bolívares.
func (r Rates) RateToVES(c Currency) (decimal.Decimal, error) {
	var rate decimal.Decimal
	switch c {
	case VES:
		return decimal.NewFromInt(1), nil
	case USD:
		rate = r.USD
	case EUR:
		rate = r.EUR
	case USDT:
		rate = r.USDT
	default:
		return decimal.Decimal{}, fmt.Errorf("unknown currency %q", c)
	}

	if rate.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w for %s", ErrRateUnavailable, c)
	}
	return rate, nil
}

// Convert moves amount from one currency to another by converting into
// bolívares and dividing by the target's rate.
func (r Rates) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	fromRate, err := r.RateToVES(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := r.RateToVES(to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return amount.Mul(fromRate).Div(toRate), nil
}
