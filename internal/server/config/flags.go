package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN, empty for in-memory RA state
//	-i string   gateway id
//	-b int      group modulus size, bits
//	-p string   simulated PUF seed
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-b", "-p", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.GatewayID, "i", config.GatewayID, "gateway id")
	fs.IntVar(&config.GroupBits, "b", config.GroupBits, "group modulus size (bits)")
	fs.StringVar(&config.PUFSeed, "p", config.PUFSeed, "simulated PUF seed")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidityDuration := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidityDuration) * time.Minute
}
