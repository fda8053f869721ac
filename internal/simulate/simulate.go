// Package simulate runs the whole protocol in one process: RA
// initialization, gateway registration, user registration, local login,
// gateway verification, mutual authentication and a credential update.
package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gwauth/internal/client/device"
	"github.com/dmitrijs2005/gwauth/internal/client/helperstore"
	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/server/gateway"
	"github.com/dmitrijs2005/gwauth/internal/server/puf"
	"github.com/dmitrijs2005/gwauth/internal/server/ra"
	"github.com/dmitrijs2005/gwauth/internal/server/registry"
)

type Scenario struct {
	GatewayID     string
	UserID        string
	Password      string
	WrongPassword string
	NewPassword   string
	Sample        []byte
	NewSample     []byte
	Bits          int
	PUFSeed       []byte
	Random        io.Reader
}

func DefaultScenario() Scenario {
	return Scenario{
		GatewayID:     common.DefaultGatewayID,
		UserID:        "user1",
		Password:      "password123",
		WrongPassword: "wrong",
		NewPassword:   "new_password",
		Sample:        []byte("user1-fingerprint-template"),
		NewSample:     []byte("user1-fingerprint-reenrolled"),
		Bits:          ra.DefaultBits,
		PUFSeed:       []byte("gw1-puf-seed"),
		Random:        rand.Reader,
	}
}

// Result records each step's outcome.
type Result struct {
	WrongLogin      bool
	Login           bool
	GatewayVerified bool
	Authenticated   bool
	KeyUpdated      bool
	ReLogin         bool
	ReAuthenticated bool
}

// Run plays s and prints one line per step to out. Protocol rejections are
// reported in Result; errors are returned only for failed setup or I/O.
func Run(ctx context.Context, s Scenario, out io.Writer, l logging.Logger) (*Result, error) {
	authority := ra.New(registry.NewMemoryRepository(), ra.WithLogger(l), ra.WithRandom(s.Random), ra.WithBits(s.Bits))
	if err := authority.Initialize(ctx); err != nil {
		return nil, err
	}
	group, err := authority.Parameters()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "RA initialized: %s\n", group)

	gw := gateway.New(s.GatewayID, group, puf.NewSimulated(s.PUFSeed), gateway.WithLogger(l), gateway.WithRandom(s.Random))
	rec, err := gw.PrepareRegistration(ctx)
	if err != nil {
		return nil, err
	}
	if err := authority.RegisterGateway(ctx, s.GatewayID, s.GatewayID, rec.Challenge, rec.Response); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Gateway %s registered\n", s.GatewayID)

	d := device.New(s.UserID, device.WithLogger(l), device.WithRandom(s.Random), device.WithHelperStore(helperstore.NewMemory()))
	if err := d.Register(ctx, s.Password, s.Sample, authority, gw); err != nil {
		return nil, fmt.Errorf("user registration: %w", err)
	}
	fmt.Fprintf(out, "User %s registered\n", s.UserID)

	res := &Result{}
	step := func(name string, ok bool) {
		outcome := "failed"
		if ok {
			outcome = "success"
		}
		fmt.Fprintf(out, "%s: %s\n", name, outcome)
	}

	if res.WrongLogin, err = d.Login(ctx, s.WrongPassword, s.Sample); err != nil {
		return nil, err
	}
	step("Login with wrong password", res.WrongLogin)

	if res.Login, err = d.Login(ctx, s.Password, s.Sample); err != nil {
		return nil, err
	}
	step("User login", res.Login)
	if !res.Login {
		return res, nil
	}

	if res.GatewayVerified, err = d.VerifyGateway(ctx, gw); err != nil {
		return nil, err
	}
	step("Gateway identity verification", res.GatewayVerified)

	oldPid := d.Pseudonym()
	if res.Authenticated, err = d.Authenticate(ctx, gw); err != nil {
		return nil, err
	}
	step("User-gateway mutual authentication", res.Authenticated)
	if !res.Authenticated {
		return res, nil
	}
	fmt.Fprintf(out, "Pseudonym rotated: %s -> %s\n", oldPid, d.Pseudonym())

	if err := d.UpdatePassword(ctx, s.NewPassword, s.NewSample, gw); err != nil {
		return nil, fmt.Errorf("key update: %w", err)
	}
	res.KeyUpdated = true
	step("User key update", res.KeyUpdated)

	d.Logout()
	if res.ReLogin, err = d.Login(ctx, s.NewPassword, s.NewSample); err != nil {
		return nil, err
	}
	step("Login with new password", res.ReLogin)
	if !res.ReLogin {
		return res, nil
	}

	if res.ReAuthenticated, err = d.Authenticate(ctx, gw); err != nil {
		return nil, err
	}
	step("Authentication with updated key", res.ReAuthenticated)

	return res, nil
}
