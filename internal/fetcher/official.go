package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OfficialOptions parameterise one central-bank rate endpoint.
type OfficialOptions struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Official fetches a single reference rate from a BCV-style JSON endpoint.
// One instance is wired per currency endpoint.
type Official struct {
	opts   OfficialOptions
	logger zerolog.Logger
	client *http.Client
}

// NewOfficial builds an official rate fetcher for one endpoint.
func NewOfficial(opts OfficialOptions, logger zerolog.Logger) *Official {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Official{
		opts:   opts,
		logger: logger.With().Str("component", "official_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

type officialResponse struct {
	Rate *decimal.Decimal `json:"rate"`
}

// FetchRate retrieves the published reference rate. A missing or non-positive
// rate field is an error; callers keep their previous value on any failure.
func (o *Official) FetchRate(ctx context.Context) (decimal.Decimal, error) {
	if o.opts.URL == "" {
		return decimal.Decimal{}, errors.New("official rate url not configured")
	}

	payload, err := getJSON(ctx, o.client, o.opts.URL, o.opts.UserAgent, "official")
	if err != nil {
		return decimal.Decimal{}, err
	}

	var res officialResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse official rate: %w", err)
	}

	if res.Rate == nil {
		return decimal.Decimal{}, errors.New("official response missing rate")
	}
	if res.Rate.Sign() <= 0 {
		return decimal.Decimal{}, errors.New("official rate not positive")
	}

	return *res.Rate, nil
}

// CrossOptions parameterise the EUR/USD cross-rate fetcher.
type CrossOptions struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Cross fetches the EUR/USD cross rate from a third-party source.
type Cross struct {
	opts   CrossOptions
	logger zerolog.Logger
	client *http.Client
}

// NewCross builds a cross-rate fetcher.
func NewCross(opts CrossOptions, logger zerolog.Logger) *Cross {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Cross{
		opts:   opts,
		logger: logger.With().Str("component", "cross_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

type crossResponse struct {
	Rate *decimal.Decimal `json:"rate"`
}

// FetchEURUSD retrieves how many USD one EUR buys.
func (c *Cross) FetchEURUSD(ctx context.Context) (decimal.Decimal, error) {
	if c.opts.URL == "" {
		return decimal.Decimal{}, errors.New("cross rate url not configured")
	}

	payload, err := getJSON(ctx, c.client, c.opts.URL, c.opts.UserAgent, "cross")
	if err != nil {
		return decimal.Decimal{}, err
	}

	var res crossResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse cross rate: %w", err)
	}

	if res.Rate == nil || res.Rate.Sign() <= 0 {
		return decimal.Decimal{}, errors.New("cross response missing positive rate")
	}

	return *res.Rate, nil
}

func getJSON(ctx context.Context, client *http.Client, url, userAgent, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(userAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "vesrates/1.0")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(source, resp.StatusCode, payload)
	}
	return payload, nil
}

var _ OfficialRateFetcher = (*Official)(nil)
var _ CrossRateFetcher = (*Cross)(nil)
