package market_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/dca-console/market"
	"github.com/stretchr/testify/require"
)

func TestTopGainers(t *testing.T) {
	coins := []market.Coin{
		{ID: "1", Change24: "5.2%", IsPositive24: true},
		{ID: "2", Change24: "2.99%", IsPositive24: true},
		{ID: "3", Change24: "3%", IsPositive24: true},
		{ID: "4", Change24: "7.0%", IsPositive24: false},
		{ID: "5", Change24: "n/a", IsPositive24: true},
		{ID: "6", Change24: " 10.5 % ", IsPositive24: true},
	}

	var ids []string
	for _, c := range market.TopGainers(coins) {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"1", "3", "6"}, ids)
}

func TestTopGainers_Cap(t *testing.T) {
	coins := make([]market.Coin, 30)
	for i := range coins {
		coins[i] = market.Coin{ID: fmt.Sprint(i), Change24: "4%", IsPositive24: true}
	}
	gainers := market.TopGainers(coins)
	require.Len(t, gainers, market.MaxGainers)
	require.Equal(t, "0", gainers[0].ID)
	require.Equal(t, "19", gainers[19].ID)

	require.Empty(t, market.TopGainers(nil))
}

func TestPrice_Unmarshal(t *testing.T) {
	var coins []market.Coin
	require.NoError(t, json.Unmarshal([]byte(`[{"price":"64000.12"},{"price":0.5},{"price":null}]`), &coins))
	require.Equal(t, market.Price("64000.12"), coins[0].Price)
	require.Equal(t, market.Price("0.5"), coins[1].Price)
	require.Equal(t, market.Price(""), coins[2].Price)
}

func TestClient_FetchPrices(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    int
		wantErr bool
	}{
		{name: "data", status: http.StatusOK, body: `{"data":[{"id":"btc","name":"BTC","fullName":"Bitcoin","price":"1","change24":"4%","isPositive24":true}]}`, want: 1},
		{name: "no data key", status: http.StatusOK, body: `{}`, want: 0},
		{name: "empty body", status: http.StatusOK, body: ``, want: 0},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantErr: true},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Empty(t, r.Header.Get("Authorization"))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			coins, err := market.NewClient(srv.URL, srv.Client()).FetchPrices(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, coins)
			require.Len(t, coins, tc.want)
		})
	}
}

func TestClient_Watch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"eth","change24":"6%","isPositive24":true}]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []market.Coin, 10)
	done := make(chan error, 1)
	go func() {
		done <- market.NewClient(srv.URL, srv.Client()).Watch(ctx, 10*time.Millisecond, func(c []market.Coin) {
			updates <- c
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case got := <-updates:
			require.Len(t, got, 1)
			require.Equal(t, "eth", got[0].ID)
		case <-time.After(2 * time.Second):
			t.Fatal("no update from Watch")
		}
	}
	require.GreaterOrEqual(t, calls.Load(), int32(3), "a failed fetch does not stop the loop")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
