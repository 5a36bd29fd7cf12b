package bots_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/dca-console/bots"
	"github.com/jrsteele09/dca-console/gateway"
	"github.com/jrsteele09/dca-console/gateway/senderfake"
	liberrors "github.com/jrsteele09/dca-console/internal/errors"
	"github.com/stretchr/testify/require"
)

func setupGridFixture() (*senderfake.FakeSender, *bots.Client) {
	fake := senderfake.NewFakeSender().
		On(http.MethodPost, "/create-grid-bot/", senderfake.Reply{Status: http.StatusCreated, Body: bots.GridBot{ID: 7, Pair: "USDT_BTC"}}).
		On(http.MethodPatch, "/7/manual", senderfake.Reply{Body: bots.GridBot{ID: 7, GridsQuantity: 20}}).
		On(http.MethodGet, "/grid-bots", senderfake.Reply{Body: []bots.GridBot{{ID: 7}, {ID: 8}}}).
		On(http.MethodGet, "/grid-bots/7", senderfake.Reply{Body: bots.GridBot{ID: 7, IsEnabled: true}}).
		On(http.MethodDelete, "/grid-bots/7", senderfake.Reply{Status: http.StatusNoContent}).
		On(http.MethodPost, "/grid-bots/7/enable", senderfake.Reply{Body: bots.GridBot{ID: 7, IsEnabled: true}}).
		On(http.MethodPost, "/grid-bots/7/disable", senderfake.Reply{Body: bots.GridBot{ID: 7}}).
		On(http.MethodGet, "/grid-bots/7/profits", senderfake.Reply{Body: []bots.GridBotProfit{{GridLineID: 1, ProfitUSD: "0.42"}}}).
		On(http.MethodGet, "/grid-bots/7/required-balances", senderfake.Reply{Body: `{"USDT":{"amount":"100"},"BTC":{"amount":"0.01"}}`}).
		On(http.MethodGet, "/grid-bots/7/events", senderfake.Reply{Body: []bots.GridBotEvent{{Message: "started"}}}).
		On(http.MethodGet, "/grid-bots/7/market-orders", senderfake.Reply{Body: []bots.MarketOrder{{OrderID: "x1"}}})
	return fake, bots.NewClient(fake)
}

func TestClient_GridBotCRUD(t *testing.T) {
	fake, client := setupGridFixture()
	ctx := context.Background()

	bot, err := client.CreateGridBot(ctx, bots.GridBotConfig{AccountID: testAccountID, Pair: "USDT_BTC", GridsQuantity: 10})
	require.NoError(t, err)
	require.Equal(t, int64(7), bot.ID)

	_, err = client.CreateGridBot(ctx, bots.GridBotConfig{Pair: "USDT_BTC"})
	require.ErrorIs(t, err, liberrors.ErrInvalidPayload)

	bot, err = client.UpdateGridBot(ctx, 7, bots.GridBotConfig{AccountID: testAccountID, Pair: "USDT_BTC", GridsQuantity: 20})
	require.NoError(t, err)
	require.Equal(t, 20, bot.GridsQuantity)
	require.Equal(t, http.MethodPatch, fake.Last().Method)
	require.Equal(t, "/7/manual", fake.Last().Path)

	bot, err = client.GetGridBot(ctx, 7)
	require.NoError(t, err)
	require.True(t, bot.IsEnabled)

	bot, err = client.EnableGridBot(ctx, 7)
	require.NoError(t, err)
	require.True(t, bot.IsEnabled)

	bot, err = client.DisableGridBot(ctx, 7)
	require.NoError(t, err)
	require.False(t, bot.IsEnabled)

	require.NoError(t, client.DeleteGridBot(ctx, 7))
	require.ErrorIs(t, client.DeleteGridBot(ctx, 0), liberrors.ErrInvalidID)
}

func TestClient_ListGridBots(t *testing.T) {
	fake, client := setupGridFixture()

	list, err := client.ListGridBots(context.Background(), bots.GridBotFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Empty(t, fake.Last().Query)

	enabled := true
	_, err = client.ListGridBots(context.Background(), bots.GridBotFilter{AccountID: 5, Enabled: &enabled, Limit: 10})
	require.NoError(t, err)
	q := fake.Last().Query
	require.Equal(t, "5", q.Get("account_ids"))
	require.Equal(t, "enabled", q.Get("state"))
	require.Equal(t, "10", q.Get("limit"))
	require.False(t, q.Has("offset"))
}

func TestClient_GridBotReports(t *testing.T) {
	fake, client := setupGridFixture()
	ctx := context.Background()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	profits, err := client.GridBotProfits(ctx, 7, from, to)
	require.NoError(t, err)
	require.Equal(t, "0.42", profits[0].ProfitUSD)
	require.Equal(t, "2024-01-01T00:00:00Z", fake.Last().Query.Get("from"))
	require.Equal(t, "2024-01-02T00:00:00Z", fake.Last().Query.Get("to"))

	_, err = client.GridBotProfits(ctx, 7, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Empty(t, fake.Last().Query)

	balances, err := client.GridBotRequiredBalances(ctx, 7)
	require.NoError(t, err)
	require.Contains(t, balances, "USDT")
	require.Contains(t, balances, "BTC")

	t.Run("events default paging", func(t *testing.T) {
		events, err := client.GridBotEvents(ctx, 7, 0, 0)
		require.NoError(t, err)
		require.Equal(t, "started", events[0].Message)
		require.Equal(t, "1", fake.Last().Query.Get("page"))
		require.Equal(t, "100", fake.Last().Query.Get("per_page"))

		_, err = client.GridBotEvents(ctx, 7, 3, 25)
		require.NoError(t, err)
		require.Equal(t, "3", fake.Last().Query.Get("page"))
		require.Equal(t, "25", fake.Last().Query.Get("per_page"))
	})

	t.Run("market orders default paging", func(t *testing.T) {
		orders, err := client.GridBotMarketOrders(ctx, 7, 0, -5)
		require.NoError(t, err)
		require.Equal(t, "x1", orders[0].OrderID)
		require.Equal(t, "100", fake.Last().Query.Get("limit"))
		require.Equal(t, "0", fake.Last().Query.Get("offset"))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := client.GetGridBot(ctx, 99)
		require.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
	})
}
