package bots

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/dca-console/gateway"
	"github.com/jrsteele09/dca-console/internal/utils"
	"github.com/pkg/errors"
)

type StrategyType string

const (
	StrategyTypeIndicator StrategyType = "indicator"
	StrategyTypeSignal    StrategyType = "signal"
	// StrategyTypeAll is only meaningful as a filter.
	StrategyTypeAll StrategyType = "all"
)

// Strategy describes one entry of the strategy catalogue. Options is passed through
// as-is; its shape differs per strategy.
type Strategy struct {
	Name              string                     `json:"name"`
	StrategyType      StrategyType               `json:"strategy_type"`
	Beta              bool                       `json:"beta,omitempty"`
	Payed             bool                       `json:"payed,omitempty"`
	AccountsWhitelist []string                   `json:"accounts_whitelist,omitempty"`
	Options           map[string]json.RawMessage `json:"options,omitempty"`
}

// NamedStrategy pairs a strategy with its catalogue key (e.g. "rsi").
type NamedStrategy struct {
	Key string `json:"key"`
	Strategy
}

// ListStrategies returns the catalogue keyed by strategy key.
func (c *Client) ListStrategies(ctx context.Context) (map[string]Strategy, error) {
	out := map[string]Strategy{}
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, strategyListPath, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[bots ListStrategies]")
	}
	return out, nil
}

// FilterStrategies keeps entries whose key or name contains search (case-insensitive)
// and whose type matches kind. An empty kind or StrategyTypeAll matches every type.
// The result is sorted by key.
func FilterStrategies(strategies map[string]Strategy, search string, kind StrategyType) []NamedStrategy {
	search = strings.ToLower(search)
	out := make([]NamedStrategy, 0, len(strategies))
	for key, s := range strategies {
		matchesSearch := strings.Contains(strings.ToLower(s.Name), search) ||
			strings.Contains(strings.ToLower(key), search)
		matchesType := kind == "" || kind == StrategyTypeAll || s.StrategyType == kind
		if matchesSearch && matchesType {
			out = append(out, NamedStrategy{Key: key, Strategy: s})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ExchangeNames strips the "Account::" / "Accounts::" class prefixes from the whitelist.
func (s Strategy) ExchangeNames() []string {
	names := make([]string, 0, len(s.AccountsWhitelist))
	for _, a := range s.AccountsWhitelist {
		names = append(names, utils.StripPrefixes(a, "Accounts::", "Account::"))
	}
	return names
}
