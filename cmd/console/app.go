package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/dca-console/accounts"
	"github.com/jrsteele09/dca-console/auth"
	"github.com/jrsteele09/dca-console/bots"
	"github.com/jrsteele09/dca-console/gateway"
	"github.com/jrsteele09/dca-console/internal/config"
	"github.com/jrsteele09/dca-console/market"
	"github.com/jrsteele09/dca-console/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":      loginCmd,
	"register":   registerCmd,
	"logout":     logoutCmd,
	"whoami":     whoamiCmd,
	"status":     statusCmd,
	"bots":       botsCmd,
	"strategies": strategiesCmd,
	"grid":       gridCmd,
	"accounts":   accountsCmd,
	"movers":     moversCmd,
}

// app holds the wired clients for one invocation.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	out      io.Writer
	errOut   io.Writer
	store    session.Store
	closer   io.Closer
	gateway  *gateway.Gateway
	auth     *auth.Service
	bots     *bots.Client
	accounts *accounts.Client
	market   *market.Client
}

func newApp(c config.Config, logger zerolog.Logger, out, errOut io.Writer) (*app, error) {
	store, err := session.OpenSQLiteStore(c.GetSessionDBPath())
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] open session store")
	}
	return wire(c, logger, out, errOut, store, store)
}

func wire(c config.Config, logger zerolog.Logger, out, errOut io.Writer, store session.Store, closer io.Closer) (*app, error) {
	httpClient := &http.Client{Timeout: c.GetRequestTimeout()}

	options := []gateway.Option{
		gateway.WithHTTPClient(httpClient),
		gateway.WithRefreshPath(c.GetRefreshPath()),
		gateway.WithLogger(logger),
		gateway.WithSessionExpiredHandler(func(_ context.Context, reason error) {
			fmt.Fprintf(errOut, "session ended (%v); run `console login` again\n", reason)
		}),
	}
	if c.GetCoalesceRefresh() {
		options = append(options, gateway.WithRefreshCoalescing())
	}
	gw, err := gateway.New(c.GetBaseURL(), store, options...)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] gateway")
	}
	authService, err := auth.NewService(gw, store)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] auth")
	}

	return &app{
		cfg:      c,
		logger:   logger,
		out:      out,
		errOut:   errOut,
		store:    store,
		closer:   closer,
		gateway:  gw,
		auth:     authService,
		bots:     bots.NewClient(gw),
		accounts: accounts.NewClient(gw),
		market:   market.NewClient(c.GetPricesURL(), httpClient, market.WithLogger(logger)),
	}, nil
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		usage(a.errOut)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, a, args[1:])
}

func (a *app) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing session store")
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "usage: console <command> [flags]\n\ncommands: %s\n", strings.Join(names, ", "))
	fmt.Fprintln(w, "  bots list|get|enable|disable|delete [-id N]")
	fmt.Fprintln(w, "  grid list|get|events|orders|profits [-id N]")
	fmt.Fprintln(w, "  accounts list|get [-id N]")
}
