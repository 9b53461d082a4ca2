package convert

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testRates() Rates {
	return Rates{
		USD:  decimal.NewFromFloat(36.5),
		EUR:  decimal.NewFromFloat(39.8),
		USDT: decimal.NewFromFloat(38.2),
	}
}

func TestParseCurrency(t *testing.T) {
	got, err := ParseCurrency(" usdt ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != USDT {
		t.Fatalf("expected USDT, got %s", got)
	}

	if _, err := ParseCurrency("BTC"); err == nil {
		t.Fatal("unknown currency should be rejected")
	}
}

func TestConvertViaLocalUnit(t *testing.T) {
	rates := testRates()
	amount := decimal.NewFromInt(10)

	got, err := rates.Convert(amount, USD, EUR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := amount.Mul(rates.USD).Div(rates.EUR)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestConvertIdentity(t *testing.T) {
	rates := testRates()
	amount := decimal.NewFromFloat(123.45)

	for _, c := range []Currency{VES, USD, EUR, USDT} {
		got, err := rates.Convert(amount, c, c)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c, err)
		}
		if !got.Equal(amount) {
			t.Fatalf("%s to %s should be the identity, got %s", c, c, got)
		}
	}
}

func TestConvertSwapRoundTrip(t *testing.T) {
	rates := testRates()
	amount := decimal.NewFromFloat(250)

	there, err := rates.Convert(amount, USDT, VES)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := rates.Convert(there, VES, USDT)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tolerance := decimal.New(1, -8)
	if back.Sub(amount).Abs().GreaterThan(tolerance) {
		t.Fatalf("swap round trip should recover the amount, got %s", back)
	}
}

func TestConvertUnavailableRate(t *testing.T) {
	rates := Rates{USD: decimal.NewFromInt(36)}

	if _, err := rates.Convert(decimal.NewFromInt(1), USD, EUR); !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}

	// VES legs never need a rate.
	if _, err := rates.Convert(decimal.NewFromInt(1), USD, VES); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
