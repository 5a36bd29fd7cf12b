package bots

import (
	"context"
	"net/http"

	"github.com/jrsteele09/dca-console/gateway"
	liberrors "github.com/jrsteele09/dca-console/internal/errors"
	"github.com/pkg/errors"
)

// StrategyRef selects a strategy by key together with its option values.
type StrategyRef struct {
	Strategy string         `json:"strategy"`
	Options  map[string]any `json:"options"`
}

// DCABotConfig is the create/update payload for a DCA bot. Decimal amounts are sent
// as strings, the API keeps them as fixed point numbers.
type DCABotConfig struct {
	AccountID                  int64         `json:"account_id"`
	Name                       string        `json:"name"`
	Pairs                      []string      `json:"pairs"`
	BaseOrderVolume            string        `json:"base_order_volume"`
	BaseOrderVolumeType        string        `json:"base_order_volume_type"`
	SafetyOrderVolume          string        `json:"safety_order_volume"`
	SafetyOrderVolumeType      string        `json:"safety_order_volume_type"`
	MaxSafetyOrders            int           `json:"max_safety_orders"`
	ActiveSafetyOrdersCount    int           `json:"active_safety_orders_count"`
	SafetyOrderStepPercentage  string        `json:"safety_order_step_percentage"`
	SafetyOrderCalculationMode string        `json:"safety_order_calculation_mode"`
	TakeProfit                 string        `json:"take_profit"`
	TakeProfitType             string        `json:"take_profit_type"`
	TakeProfitSteps            []any         `json:"take_profit_steps"`
	StopLossPercentage         string        `json:"stop_loss_percentage"`
	StopLossType               string        `json:"stop_loss_type"`
	StopLossTimeoutEnabled     bool          `json:"stop_loss_timeout_enabled"`
	StopLossTimeoutInSeconds   int           `json:"stop_loss_timeout_in_seconds"`
	Cooldown                   string        `json:"cooldown"`
	MartingaleVolumeCoeff      string        `json:"martingale_volume_coefficient"`
	MartingaleStepCoeff        string        `json:"martingale_step_coefficient"`
	TrailingEnabled            bool          `json:"trailing_enabled"`
	TrailingDeviation          string        `json:"trailing_deviation"`
	MaxActiveDeals             int           `json:"max_active_deals"`
	Strategy                   string        `json:"strategy"`
	ProfitCurrency             string        `json:"profit_currency"`
	StartOrderType             string        `json:"start_order_type"`
	ReinvestingPercentage      string        `json:"reinvesting_percentage"`
	MinProfitPercentage        string        `json:"min_profit_percentage"`
	MinProfitType              *string       `json:"min_profit_type"`
	BTCPriceLimit              string        `json:"btc_price_limit"`
	MinVolumeBTC24h            string        `json:"min_volume_btc_24h"`
	DealStartDelaySeconds      *int          `json:"deal_start_delay_seconds"`
	DisableAfterDealsCount     *int          `json:"disable_after_deals_count"`
	DealsCounter               *int          `json:"deals_counter"`
	AllowedDealsOnSamePair     *int          `json:"allowed_deals_on_same_pair"`
	CloseDealsTimeout          *int          `json:"close_deals_timeout"`
	MinPrice                   *string       `json:"min_price"`
	MaxPrice                   *string       `json:"max_price"`
	MinPricePercentage         *string       `json:"min_price_percentage"`
	MaxPricePercentage         *string       `json:"max_price_percentage"`
	LeverageType               string        `json:"leverage_type"`
	LeverageCustomValue        *string       `json:"leverage_custom_value"`
	ReinvestedVolumeUSD        *string       `json:"reinvested_volume_usd"`
	StrategyList               []StrategyRef `json:"strategy_list"`
	SafetyStrategyList         []StrategyRef `json:"safety_strategy_list"`
	CloseStrategyList          []StrategyRef `json:"close_strategy_list"`
}

// NewDCABotConfig returns the console's default long bot for one pair, named BOT-<pair>.
func NewDCABotConfig(accountID int64, pair string) DCABotConfig {
	return DCABotConfig{
		AccountID:                  accountID,
		Name:                       "BOT-" + pair,
		Pairs:                      []string{pair},
		BaseOrderVolume:            "20.0",
		BaseOrderVolumeType:        "quote_currency",
		SafetyOrderVolume:          "10.0",
		SafetyOrderVolumeType:      "quote_currency",
		MaxSafetyOrders:            3,
		ActiveSafetyOrdersCount:    3,
		SafetyOrderStepPercentage:  "0.8",
		SafetyOrderCalculationMode: "last_executed",
		TakeProfit:                 "1.0",
		TakeProfitType:             "total",
		TakeProfitSteps:            []any{},
		StopLossPercentage:         "0.0",
		StopLossType:               "stop_loss",
		Cooldown:                   "300",
		MartingaleVolumeCoeff:      "1.7",
		MartingaleStepCoeff:        "1.5",
		TrailingEnabled:            true,
		TrailingDeviation:          "0.2",
		MaxActiveDeals:             1,
		Strategy:                   "long",
		ProfitCurrency:             "quote_currency",
		StartOrderType:             "limit",
		ReinvestingPercentage:      "100.0",
		MinProfitPercentage:        "0.0",
		BTCPriceLimit:              "0.0",
		MinVolumeBTC24h:            "0.0",
		LeverageType:               "not_specified",
		StrategyList:               []StrategyRef{{Strategy: "nonstop", Options: map[string]any{}}},
		SafetyStrategyList: []StrategyRef{{
			Strategy: "rsi",
			Options: map[string]any{
				"time":              "3m",
				"points":            30,
				"time_period":       7,
				"trigger_condition": "less",
			},
		}},
		CloseStrategyList: []StrategyRef{},
	}
}

// Validate catches what the API would reject before a round trip.
func (c DCABotConfig) Validate() error {
	switch {
	case c.AccountID <= 0:
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "account_id must be positive")
	case len(c.Pairs) == 0 || c.Pairs[0] == "":
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "at least one pair is required")
	case c.Name == "":
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "name is required")
	case c.MaxSafetyOrders < c.ActiveSafetyOrdersCount:
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "active_safety_orders_count exceeds max_safety_orders")
	}
	return nil
}

// DCABot is a bot as listed or fetched from the API.
type DCABot struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	AccountID       int64         `json:"account_id"`
	AccountName     string        `json:"account_name"`
	IsEnabled       bool          `json:"is_enabled"`
	Pairs           []string      `json:"pairs"`
	BaseOrderVolume string        `json:"base_order_volume"`
	SafetyOrderVol  string        `json:"safety_order_volume"`
	TakeProfit      string        `json:"take_profit"`
	Strategy        string        `json:"strategy"`
	StrategyList    []StrategyRef `json:"strategy_list"`
	CreatedAt       string        `json:"created_at,omitempty"`
	UpdatedAt       string        `json:"updated_at,omitempty"`
}

// Client talks to the bot endpoints through the authenticated gateway.
type Client struct {
	sender gateway.Sender
}

func NewClient(sender gateway.Sender) *Client {
	return &Client{sender: sender}
}

func (c *Client) CreateDCABot(ctx context.Context, cfg DCABotConfig) (*DCABot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var bot DCABot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPost, createDCABotPath, cfg, &bot); err != nil {
		return nil, errors.Wrap(err, "[bots CreateDCABot]")
	}
	return &bot, nil
}

func (c *Client) GetDCABot(ctx context.Context, id int64) (*DCABot, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	var bot DCABot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, getDCABotPath(id), nil, &bot); err != nil {
		return nil, errors.Wrapf(err, "[bots GetDCABot] %d", id)
	}
	return &bot, nil
}

func (c *Client) ListDCABots(ctx context.Context) ([]DCABot, error) {
	var list []DCABot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, listDCABotsPath, nil, &list); err != nil {
		return nil, errors.Wrap(err, "[bots ListDCABots]")
	}
	return list, nil
}

func (c *Client) UpdateDCABot(ctx context.Context, id int64, cfg DCABotConfig) (*DCABot, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var bot DCABot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPatch, updateDCABotPath(id), cfg, &bot); err != nil {
		return nil, errors.Wrapf(err, "[bots UpdateDCABot] %d", id)
	}
	return &bot, nil
}

// EnableDCABot and DisableDCABot return the bot in its new state.
func (c *Client) EnableDCABot(ctx context.Context, id int64) (*DCABot, error) {
	return c.toggle(ctx, id, enableDCABotPath(id))
}

func (c *Client) DisableDCABot(ctx context.Context, id int64) (*DCABot, error) {
	return c.toggle(ctx, id, disableDCABotPath(id))
}

func (c *Client) toggle(ctx context.Context, id int64, path string) (*DCABot, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	var bot DCABot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPost, path, nil, &bot); err != nil {
		return nil, errors.Wrapf(err, "[bots toggle] %s", path)
	}
	return &bot, nil
}

func (c *Client) DeleteDCABot(ctx context.Context, id int64) error {
	if id <= 0 {
		return liberrors.ErrInvalidID
	}
	if err := gateway.SendJSON(ctx, c.sender, http.MethodDelete, deleteDCABotPath(id), nil, nil); err != nil {
		return errors.Wrapf(err, "[bots DeleteDCABot] %d", id)
	}
	return nil
}
