package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if a.device == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", a.device.ID(), a.device.State())
}

// Root runs the REPL until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Device client (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
