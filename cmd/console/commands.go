package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/dca-console/auth"
	"github.com/jrsteele09/dca-console/bots"
	"github.com/jrsteele09/dca-console/internal/utils"
	"github.com/jrsteele09/dca-console/market"
	"github.com/jrsteele09/dca-console/session"
)

const passwordVar = "CONSOLE_PASSWORD"

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func loginCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (or set "+passwordVar+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(passwordVar)
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login: -email and -password are required")
	}

	profile, err := a.auth.Login(ctx, auth.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	return a.print(profile)
}

func registerCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (or set "+passwordVar+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(passwordVar)
	}

	msg, err := a.auth.Register(ctx, auth.Registration{FullName: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func logoutCmd(_ context.Context, a *app, _ []string) error {
	if err := a.auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func whoamiCmd(ctx context.Context, a *app, _ []string) error {
	profile, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	return a.print(profile)
}

type sessionStatus struct {
	LoggedIn   bool      `json:"logged_in"`
	HasRefresh bool      `json:"has_refresh_token"`
	Expiry     time.Time `json:"access_token_expiry"`
	Expired    bool      `json:"access_token_expired"`
}

// statusCmd reports the stored session without contacting the server.
func statusCmd(_ context.Context, a *app, _ []string) error {
	tok, err := session.StoreTokenSource(a.store).Token()
	if errors.Is(err, session.ErrNoSession) {
		return a.print(sessionStatus{})
	}
	if err != nil {
		return err
	}
	return a.print(sessionStatus{
		LoggedIn:   true,
		HasRefresh: tok.RefreshToken != "",
		Expiry:     tok.Expiry,
		Expired:    !tok.Expiry.IsZero() && !tok.Valid(),
	})
}

func subcommand(name string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s: missing subcommand", name)
	}
	return args[0], args[1:], nil
}

func idFlag(a *app, name string, args []string) (int64, error) {
	fs := newFlagSet(a, name)
	id := fs.Int64("id", 0, "object id")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	return *id, nil
}

func botsCmd(ctx context.Context, a *app, args []string) error {
	sub, rest, err := subcommand("bots", args)
	if err != nil {
		return err
	}
	if sub == "list" {
		list, err := a.bots.ListDCABots(ctx)
		if err != nil {
			return err
		}
		return a.print(list)
	}

	id, err := idFlag(a, "bots "+sub, rest)
	if err != nil {
		return err
	}
	switch sub {
	case "get":
		bot, err := a.bots.GetDCABot(ctx, id)
		if err != nil {
			return err
		}
		return a.print(bot)
	case "enable":
		bot, err := a.bots.EnableDCABot(ctx, id)
		if err != nil {
			return err
		}
		return a.print(bot)
	case "disable":
		bot, err := a.bots.DisableDCABot(ctx, id)
		if err != nil {
			return err
		}
		return a.print(bot)
	case "delete":
		if err := a.bots.DeleteDCABot(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted bot %d\n", id)
		return nil
	}
	return fmt.Errorf("bots: unknown subcommand %q", sub)
}

func strategiesCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "strategies")
	search := fs.String("search", "", "match on key or name")
	kind := fs.String("type", string(bots.StrategyTypeAll), "all, indicator or signal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	strategies, err := a.bots.ListStrategies(ctx)
	if err != nil {
		return err
	}
	return a.print(bots.FilterStrategies(strategies, *search, bots.StrategyType(*kind)))
}

func gridCmd(ctx context.Context, a *app, args []string) error {
	sub, rest, err := subcommand("grid", args)
	if err != nil {
		return err
	}

	fs := newFlagSet(a, "grid "+sub)
	id := fs.Int64("id", 0, "grid bot id")
	accountID := fs.Int64("account", 0, "filter by account id")
	enabledOnly := fs.Bool("enabled", false, "list only enabled bots")
	since := fs.Duration("since", 24*time.Hour, "profits window")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	switch sub {
	case "list":
		filter := bots.GridBotFilter{AccountID: *accountID}
		if *enabledOnly {
			filter.Enabled = utils.Ptr(true)
		}
		list, err := a.bots.ListGridBots(ctx, filter)
		if err != nil {
			return err
		}
		return a.print(list)
	case "get":
		bot, err := a.bots.GetGridBot(ctx, *id)
		if err != nil {
			return err
		}
		return a.print(bot)
	case "events":
		events, err := a.bots.GridBotEvents(ctx, *id, 0, 0)
		if err != nil {
			return err
		}
		return a.print(events)
	case "orders":
		orders, err := a.bots.GridBotMarketOrders(ctx, *id, 0, 0)
		if err != nil {
			return err
		}
		return a.print(orders)
	case "profits":
		now := time.Now()
		profits, err := a.bots.GridBotProfits(ctx, *id, now.Add(-*since), now)
		if err != nil {
			return err
		}
		return a.print(profits)
	}
	return fmt.Errorf("grid: unknown subcommand %q", sub)
}

func accountsCmd(ctx context.Context, a *app, args []string) error {
	sub, rest, err := subcommand("accounts", args)
	if err != nil {
		return err
	}
	switch sub {
	case "list":
		list, err := a.accounts.List(ctx)
		if err != nil {
			return err
		}
		return a.print(list)
	case "get":
		id, err := idFlag(a, "accounts get", rest)
		if err != nil {
			return err
		}
		acc, err := a.accounts.Details(ctx, id)
		if err != nil {
			return err
		}
		return a.print(acc)
	}
	return fmt.Errorf("accounts: unknown subcommand %q", sub)
}

func moversCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "movers")
	watch := fs.Bool("watch", false, "keep reloading until interrupted")
	interval := fs.Duration("interval", market.DefaultWatchInterval, "reload interval with -watch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*watch {
		coins, err := a.market.FetchPrices(ctx)
		if err != nil {
			return err
		}
		return a.print(market.TopGainers(coins))
	}

	err := a.market.Watch(ctx, *interval, func(gainers []market.Coin) {
		if err := a.print(gainers); err != nil {
			a.logger.Warn().Err(err).Msg("printing movers")
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
