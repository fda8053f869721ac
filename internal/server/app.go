// Package server wires the registration authority, the gateway and the gRPC
// endpoint into one process, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/server/config"
	"github.com/dmitrijs2005/gwauth/internal/server/gateway"
	"github.com/dmitrijs2005/gwauth/internal/server/puf"
	"github.com/dmitrijs2005/gwauth/internal/server/ra"
	"github.com/dmitrijs2005/gwauth/internal/server/registry"

	gs "github.com/dmitrijs2005/gwauth/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager registry.Manager
	ra      *ra.Authority
	gw      *gateway.Gateway
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	m, err := registry.NewManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, l, m)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, l logging.Logger, m registry.Manager) (*App, error) {
	authority := ra.New(m.Registry(), ra.WithLogger(l), ra.WithBits(c.GroupBits))
	if err := authority.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("ra init error: %w", err)
	}

	group, err := authority.Parameters()
	if err != nil {
		return nil, err
	}

	gw := gateway.New(c.GatewayID, group, puf.NewSimulated([]byte(c.PUFSeed)), gateway.WithLogger(l))

	app := &App{config: c, logger: l, manager: m, ra: authority, gw: gw}
	if err := app.registerGateway(ctx); err != nil {
		return nil, fmt.Errorf("gateway registration error: %w", err)
	}
	return app, nil
}

// registerGateway enrolls the gateway with the RA. A gateway the RA already
// knows (persisted state, restart) gets its stored challenge back instead,
// which succeeds only when the PUF seed is unchanged.
func (app *App) registerGateway(ctx context.Context) error {
	id := app.gw.ID()

	reg, err := app.ra.Gateway(ctx, id)
	switch {
	case err == nil:
		app.logger.Info(ctx, "restoring gateway registration", "gateway_id", id)
		return app.gw.RestoreChallenge(ctx, reg.Challenge, reg.Response)
	case !errors.Is(err, common.ErrUnknownGateway):
		return err
	}

	rec, err := app.gw.PrepareRegistration(ctx)
	if err != nil {
		return err
	}
	return app.ra.RegisterGateway(ctx, id, id, rec.Challenge, rec.Response)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.ra, app.gw,
		app.config.SecretKey, app.config.SessionTokenValidityDuration)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the RA storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "gateway_id", app.gw.ID(), "group", app.gw.Group().String())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
}
