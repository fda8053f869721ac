package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/gwauth/internal/client/client"
	"github.com/dmitrijs2005/gwauth/internal/client/config"
	"github.com/dmitrijs2005/gwauth/internal/client/device"
	"github.com/dmitrijs2005/gwauth/internal/client/helperstore"
	"github.com/dmitrijs2005/gwauth/internal/logging"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	device    *device.Device
	authority device.Authority
	gateway   device.Gateway
	sample    []byte
	reader    *bufio.Reader
	out       io.Writer
	closers   []func() error
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	sample, err := readSampleFile(c.BiometricSampleFile)
	if err != nil {
		return nil, err
	}

	helpers, err := helperstore.Open(ctx, c.HelperStoreLocation, helperstore.Options{
		S3: helperstore.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3User,
			SecretKey:    c.S3Password,
			BaseEndpoint: c.S3BaseEndpoint,
		},
		Passphrase: c.SealPassphrase,
	})
	if err != nil {
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(ctx, c.ServerEndpointAddr, c.RPCTimeout)
	if err != nil {
		_ = helpers.Close()
		return nil, err
	}

	d := device.New(c.UserID, device.WithHelperStore(helpers), device.WithLogger(l))

	a := newApp(c, l, d, apiClient, apiClient, sample, os.Stdin, os.Stdout)
	a.closers = append(a.closers, apiClient.Close, helpers.Close)
	return a, nil
}

func newApp(c *config.Config, l logging.Logger, d *device.Device, ra device.Authority, gw device.Gateway,
	sample []byte, in io.Reader, out io.Writer) *App {
	return &App{
		config:    c,
		logger:    l,
		device:    d,
		authority: ra,
		gateway:   gw,
		sample:    sample,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "close error", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	s := a.device.State()
	return s == device.LoggedIn || s == device.Authenticated
}
