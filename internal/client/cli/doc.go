// Package cli provides the interactive device client.
//
// It wires configuration, the helper-data store, the gRPC peers and a device
// into a small REPL. Typical flow: register, login, verify the gateway,
// authenticate (the pseudonym rotates), then update the password or
// biometric sample.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
