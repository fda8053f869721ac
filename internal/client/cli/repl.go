package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Reenroll(ctx context.Context) error
	Login(ctx context.Context) error
	VerifyGateway(ctx context.Context) error
	Authenticate(ctx context.Context) error
	UpdatePassword(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads one command per line and dispatches it to a. The loop exits
// on EOF or on "exit"/"quit". Commands that prompt read from the same
// reader.
//
//	Not logged in:
//	  - register       enroll with the RA and gateway
//	  - reenroll       enroll again under an existing RA registration
//	  - login          local password/biometric check
//	  - exit | quit
//
//	Logged in:
//	  - verify         check the gateway's identity proof
//	  - auth           run the authentication handshake
//	  - update         change password and/or biometric sample
//	  - logout
//	  - exit | quit
//
// Handler errors are already reported to the user and are not repeated here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gw> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: verify, auth, update, logout, exit")
			} else {
				printlnFn("Available commands: register, reenroll, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "reenroll":
			_ = a.Reenroll(ctx)

		case "login":
			_ = a.Login(ctx)

		case "verify":
			_ = a.VerifyGateway(ctx)

		case "auth":
			_ = a.Authenticate(ctx)

		case "update":
			_ = a.UpdatePassword(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
