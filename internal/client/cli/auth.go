package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gwauth/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) report(ok bool, success, failure string) {
	if ok {
		fmt.Fprintln(a.out, success)
	} else {
		fmt.Fprintln(a.out, failure)
	}
}

// fail prints err for the user and returns it.
func (a *App) fail(err error) error {
	fmt.Fprintln(a.out, "Error:", err)
	return err
}

// Register enrolls the configured user with the sample from config.
func (a *App) Register(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	if err := a.device.Register(ctx, string(password), a.sample, a.authority, a.gateway); err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Registered %s at gateway %s\n", a.device.ID(), a.device.GatewayID())
	return nil
}

// Reenroll restores a registration the RA already holds, e.g. after the
// gateway restarted or on a new run of this client.
func (a *App) Reenroll(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	if err := a.device.Reenroll(ctx, string(password), a.sample, a.authority, a.gateway); err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Re-enrolled %s at gateway %s\n", a.device.ID(), a.device.GatewayID())
	return nil
}

// Login checks the password and sample locally.
func (a *App) Login(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	ok, err := a.device.Login(ctx, string(password), a.sample)
	if err != nil {
		return a.fail(err)
	}
	a.report(ok, "Login success", "Login failed")
	return nil
}

func (a *App) VerifyGateway(ctx context.Context) error {
	ok, err := a.device.VerifyGateway(ctx, a.gateway)
	if err != nil {
		return a.fail(err)
	}
	a.report(ok, "Gateway identity verified", "Gateway identity verification failed")
	return nil
}

func (a *App) Authenticate(ctx context.Context) error {
	ok, err := a.device.Authenticate(ctx, a.gateway)
	if err != nil {
		return a.fail(err)
	}
	a.report(ok, "Mutual authentication success", "Mutual authentication failed")
	return nil
}

// UpdatePassword asks for the new password and an optional new sample file;
// an empty path keeps the configured sample.
func (a *App) UpdatePassword(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	path, err := getSimpleText(a.reader, "New biometric sample file (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	sample := a.sample
	if path != "" {
		if sample, err = readSampleFile(path); err != nil {
			return a.fail(err)
		}
	}

	if err := a.device.UpdatePassword(ctx, string(password), sample, a.gateway); err != nil {
		return a.fail(err)
	}
	a.sample = sample
	fmt.Fprintln(a.out, "Key updated")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.device.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
