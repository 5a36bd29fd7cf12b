// Package accounts manages the exchange accounts bots trade on.
package accounts

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/dca-console/gateway"
	liberrors "github.com/jrsteele09/dca-console/internal/errors"
	"github.com/pkg/errors"
)

const (
	AddExchangePath  = "/add-exchange-account/"
	AccountsListPath = "/account/list/"
)

func detailsPath(id int64) string { return fmt.Sprintf("/account/details/%d", id) }

// Account is an exchange account linked to the signed in user.
type Account struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ExchangeName string `json:"exchange_name"`
	MarketCode   string `json:"market_code,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// ExchangeAccountRequest links a new exchange account by API key.
type ExchangeAccountRequest struct {
	Name         string `json:"name"`
	ExchangeName string `json:"exchange_name"`
	APIKey       string `json:"api_key"`
	APISecret    string `json:"api_secret"`
	Passphrase   string `json:"passphrase,omitempty"`
}

func (r ExchangeAccountRequest) validate() error {
	switch {
	case r.Name == "":
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "name is required")
	case r.ExchangeName == "":
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "exchange_name is required")
	case r.APIKey == "" || r.APISecret == "":
		return liberrors.Wrapf(liberrors.ErrInvalidPayload, "api_key and api_secret are required")
	}
	return nil
}

type Client struct {
	sender gateway.Sender
}

func NewClient(sender gateway.Sender) *Client {
	return &Client{sender: sender}
}

// AddExchangeAccount links the account and returns it as stored by the server.
func (c *Client) AddExchangeAccount(ctx context.Context, req ExchangeAccountRequest) (*Account, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var acc Account
	if err := gateway.SendJSON(ctx, c.sender, http.MethodPost, AddExchangePath, req, &acc); err != nil {
		return nil, errors.Wrap(err, "[accounts AddExchangeAccount]")
	}
	return &acc, nil
}

func (c *Client) Details(ctx context.Context, id int64) (*Account, error) {
	if id <= 0 {
		return nil, liberrors.ErrInvalidID
	}
	var acc Account
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, detailsPath(id), nil, &acc); err != nil {
		return nil, errors.Wrapf(err, "[accounts Details] %d", id)
	}
	return &acc, nil
}

func (c *Client) List(ctx context.Context) ([]Account, error) {
	list := []Account{}
	if err := gateway.SendJSON(ctx, c.sender, http.MethodGet, AccountsListPath, nil, &list); err != nil {
		return nil, errors.Wrap(err, "[accounts List]")
	}
	return list, nil
}
