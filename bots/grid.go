package bots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/dca-console/gateway"
	liberrors "github.com/jrsteele09/dca-console/internal/errors"
	"github.com/pkg/errors"
)

// GridBotConfig is the create/update payload for a grid bot.
type GridBotConfig struct {
	AccountID       int64   `json:"account_id"`
	Name            string  `json:"name,omitempty"`
	Pair            string  `json:"pair"`
	UpperPrice      string  `json:"upper_price"`
	LowerPrice      string  `json:"lower_price"`
	QuantityPerGrid string  `json:"quantity_per_grid"`
	GridsQuantity   int     `json:"grids_quantity"`
	LeverageType    string  `json:"leverage_type,omitempty"`
	LeverageValue   *string `json:"leverage_custom_value,omitempty"`
	IgnoreWarnings  bool    `json:"ignore_warnings,omitempty"`
}

type GridBot struct {
	ID              int64  `json:"id"`
	AccountID       int64  `json:"account_id"`
	AccountName     string `json:"account_name"`
	Name            string `json:"name"`
	Pair            string `json:"pair"`
	IsEnabled       bool   `json:"is_enabled"`
	UpperPrice      string `json:"upper_price"`
	LowerPrice      string `json:"lower_price"`
	QuantityPerGrid string `json:"quantity_per_grid"`
	GridsQuantity   int    `json:"grids_quantity"`
	CurrentProfit   string `json:"current_profit,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

type GridBotProfit struct {
	GridLineID int64  `json:"grid_line_id"`
	ProfitUSD  string `json:"profit_usd"`
	Profit     string `json:"profit"`
	CreatedAt  string `json:"created_at"`
}

type GridBotEvent struct {
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type MarketOrder struct {
	OrderID   string `json:"order_id"`
	OrderType string `json:"order_type"`
	Status    string `json:"status_string"`
	Rate      string `json:"rate"`
	Quantity  string `json:"quantity"`
	Total     string `json:"total"`
	CreatedAt string `json:"created_at"`
}

// RequiredBalances is passed through untouched; its keys are currency codes.
type RequiredBalances map[string]json.RawMessage

// GridBotFilter narrows ListGridBots. Zero values are omitted from the query.
type GridBotFilter struct {
	AccountID int64
	Enabled   *bool
	Limit     int
	Offset    int
}

func (f GridBotFilter) query() url.Values {
	q := url.Values{}
	if f.AccountID > 0 {
		q.Set("account_ids", strconv.FormatInt(f.AccountID, 10))
	}
	if f.Enabled != nil {
		q.Set("state", map[bool]string{true: "enabled", false: "disabled"}[*f.Enabled])
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

func (c *Client) CreateGridBot(ctx context.Context, cfg GridBotConfig) (*GridBot, error) {
	if cfg.AccountID <= 0 || cfg.Pair == "" {
		return nil, liberrors.Wrapf(liberrors.ErrInvalidPayload, "account_id and pair are required")
	}
	var bot GridBot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPost, createGridBotPath, cfg, &bot); err != nil {
		return nil, errors.Wrap(err, "[bots CreateGridBot]")
	}
	return &bot, nil
}

func (c *Client) UpdateGridBot(ctx context.Context, id int64, cfg GridBotConfig) (*GridBot, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	var bot GridBot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPatch, updateGridBotPath(id), cfg, &bot); err != nil {
		return nil, errors.Wrapf(err, "[bots UpdateGridBot] %d", id)
	}
	return &bot, nil
}

func (c *Client) GetGridBot(ctx context.Context, id int64) (*GridBot, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	var bot GridBot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, gridBotPath(id), nil, &bot); err != nil {
		return nil, errors.Wrapf(err, "[bots GetGridBot] %d", id)
	}
	return &bot, nil
}

func (c *Client) ListGridBots(ctx context.Context, filter GridBotFilter) ([]GridBot, error) {
	d := gateway.NewDescriptor(http.MethodGet, listGridBotsPath)
	d.Query = filter.query()

	var list []GridBot
	if err := gateway.Do(ctx, c.sender, d, &list); err != nil {
		return nil, errors.Wrap(err, "[bots ListGridBots]")
	}
	return list, nil
}

// GridBotProfits lists realised profits between from and to. Zero times are left out.
func (c *Client) GridBotProfits(ctx context.Context, id int64, from, to time.Time) ([]GridBotProfit, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	d := gateway.NewDescriptor(http.MethodGet, gridBotSubPath(id, "profits"))
	d.Query = url.Values{}
	if !from.IsZero() {
		d.Query.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		d.Query.Set("to", to.UTC().Format(time.RFC3339))
	}

	var profits []GridBotProfit
	if err := gateway.Do(ctx, c.sender, d, &profits); err != nil {
		return nil, errors.Wrapf(err, "[bots GridBotProfits] %d", id)
	}
	return profits, nil
}

func (c *Client) EnableGridBot(ctx context.Context, id int64) (*GridBot, error) {
	return c.toggleGrid(ctx, id, "enable")
}

func (c *Client) DisableGridBot(ctx context.Context, id int64) (*GridBot, error) {
	return c.toggleGrid(ctx, id, "disable")
}

func (c *Client) toggleGrid(ctx context.Context, id int64, action string) (*GridBot, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	var bot GridBot
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPost, gridBotSubPath(id, action), nil, &bot); err != nil {
		return nil, errors.Wrapf(err, "[bots toggleGrid] %s %d", action, id)
	}
	return &bot, nil
}

func (c *Client) DeleteGridBot(ctx context.Context, id int64) error {
	if id <= 0 {
		return liberrors.ErrInvalidID
	}
	if err := gateway.SendJSON(ctx, c.sender, http.MethodDelete, gridBotPath(id), nil, nil); err != nil {
		return errors.Wrapf(err, "[bots DeleteGridBot] %d", id)
	}
	return nil
}

func (c *Client) GridBotRequiredBalances(ctx context.Context, id int64) (RequiredBalances, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	out := RequiredBalances{}
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, gridBotSubPath(id, "required-balances"), nil, &out); err != nil {
		return nil, errors.Wrapf(err, "[bots GridBotRequiredBalances] %d", id)
	}
	return out, nil
}

// GridBotEvents pages through the bot's event log. page and perPage default to 1 and 100.
func (c *Client) GridBotEvents(ctx context.Context, id int64, page, perPage int) ([]GridBotEvent, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	if page <= 0 {
		page = defaultEventsPage
	}
	if perPage <= 0 {
		perPage = defaultEventsLimit
	}
	d := gateway.NewDescriptor(http.MethodGet, gridBotSubPath(id, "events"))
	d.Query = url.Values{"page": {strconv.Itoa(page)}, "per_page": {strconv.Itoa(perPage)}}

	var events []GridBotEvent
	if err := gateway.Do(ctx, c.sender, d, &events); err != nil {
		return nil, errors.Wrapf(err, "[bots GridBotEvents] %d", id)
	}
	return events, nil
}

// GridBotMarketOrders lists orders placed by the bot. limit defaults to 100.
func (c *Client) GridBotMarketOrders(ctx context.Context, id int64, limit, offset int) ([]MarketOrder, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	if offset < 0 {
		offset = 0
	}
	d := gateway.NewDescriptor(http.MethodGet, gridBotSubPath(id, "market-orders"))
	d.Query = url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}}

	var orders []MarketOrder
	if err := gateway.Do(ctx, c.sender, d, &orders); err != nil {
		return nil, errors.Wrapf(err, "[bots GridBotMarketOrders] %d", id)
	}
	return orders, nil
}
