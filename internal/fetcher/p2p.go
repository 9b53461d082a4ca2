package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// P2POptions parameterise the P2P quote fetcher.
type P2POptions struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// P2P fetches binance-p2p style quotes from a criptoya-compatible endpoint.
type P2P struct {
	opts   P2POptions
	logger zerolog.Logger
	client *http.Client
}

// NewP2P constructs a P2P quote fetcher.
func NewP2P(opts P2POptions, logger zerolog.Logger) *P2P {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &P2P{
		opts:   opts,
		logger: logger.With().Str("component", "p2p_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

type p2pResponse struct {
	Ask  *decimal.Decimal `json:"ask"`
	Bid  *decimal.Decimal `json:"bid"`
	Time int64            `json:"time"`
}

// FetchQuote retrieves the current ask/bid pair. A response missing either
// numeric field is treated the same as a transport failure.
func (p *P2P) FetchQuote(ctx context.Context) (Quote, error) {
	if p.opts.URL == "" {
		return Quote{}, errors.New("p2p quote url not configured")
	}

	payload, err := getJSON(ctx, p.client, p.opts.URL, p.opts.UserAgent, "p2p")
	if err != nil {
		return Quote{}, err
	}

	var res p2pResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return Quote{}, fmt.Errorf("parse p2p quote: %w", err)
	}

	if res.Ask == nil || res.Bid == nil {
		return Quote{}, errors.New("p2p quote missing ask or bid")
	}

	quote := Quote{Ask: *res.Ask, Bid: *res.Bid}
	if res.Time > 0 {
		quote.Time = time.Unix(res.Time, 0)
	}
	return quote, nil
}

func httpError(source string, status int, payload []byte) error {
	if len(payload) > 0 {
		return fmt.Errorf("%s api error (%d): %s", source, status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("%s api error (%d)", source, status)
}

var _ P2PQuoteFetcher = (*P2P)(nil)
