// Package market reads the public crypto price feed shown on the console's
// top movers page. The feed is unauthenticated and lives outside the API, so it is
// fetched with a plain HTTP client instead of the gateway.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultPricesURL = "https://stag-frontend.arbigobot.com/api/crypto-prices"

	// DefaultWatchInterval is how often the movers page reloads the feed.
	DefaultWatchInterval = time.Minute

	MinGainPercent = 3.0
	MaxGainers     = 20
)

// Price accepts either a JSON number or a string; the feed uses both.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*p = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*p = Price(n.String())
	}
	return nil
}

type Coin struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FullName     string `json:"fullName"`
	Price        Price  `json:"price"`
	Change24     string `json:"change24"` // e.g. "4.21%"
	IsPositive24 bool   `json:"isPositive24"`
}

// ChangePercent parses Change24. ok is false when it is not a number.
func (c Coin) ChangePercent() (float64, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(c.Change24), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// TopGainers keeps coins up at least MinGainPercent over 24h, in feed order,
// capped at MaxGainers.
func TopGainers(coins []Coin) []Coin {
	out := make([]Coin, 0, MaxGainers)
	for _, c := range coins {
		if len(out) == MaxGainers {
			break
		}
		change, ok := c.ChangePercent()
		if !ok || !c.IsPositive24 || change < MinGainPercent {
			continue
		}
		out = append(out, c)
	}
	return out
}

type Client struct {
	pricesURL  string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a feed client. An empty pricesURL selects DefaultPricesURL and a
// nil httpClient selects http.DefaultClient.
func NewClient(pricesURL string, httpClient *http.Client, options ...Option) *Client {
	if pricesURL == "" {
		pricesURL = DefaultPricesURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{pricesURL: pricesURL, httpClient: httpClient, logger: zerolog.Nop()}
	for _, o := range options {
		o(c)
	}
	return c
}

// FetchPrices returns the feed's data list, empty when the feed has none.
func (c *Client) FetchPrices(ctx context.Context) ([]Coin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pricesURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[market FetchPrices] new request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[market FetchPrices]")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[market FetchPrices] read body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("[market FetchPrices] unexpected status %d", resp.StatusCode)
	}

	var feed struct {
		Data []Coin `json:"data"`
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &feed); err != nil {
			return nil, errors.Wrap(err, "[market FetchPrices] decode")
		}
	}
	if feed.Data == nil {
		feed.Data = []Coin{}
	}
	return feed.Data, nil
}

// Watch fetches immediately and then every interval, handing the top gainers to fn
// until ctx is done. A failed fetch is logged and skipped; the next tick tries again.
func (c *Client) Watch(ctx context.Context, interval time.Duration, fn func([]Coin)) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		coins, err := c.FetchPrices(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			c.logger.Warn().Err(err).Str("url", c.pricesURL).Msg("price feed fetch failed")
		default:
			fn(TopGainers(coins))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
