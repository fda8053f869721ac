// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/gwauth/internal/common"
)

// Config holds runtime settings for the RA + gateway server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps RA state in memory.
//   - GatewayID: id the gateway registers under (also its declared id).
//   - GroupBits: modulus size used when the RA generates parameters.
//   - PUFSeed: seed of the simulated PUF. Must stay stable across restarts
//     when the RA state is persisted.
//   - SecretKey: HMAC secret for session tickets (HS256).
//   - SessionTokenValidityDuration: session ticket lifetime.
type Config struct {
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	GatewayID                    string
	GroupBits                    int
	PUFSeed                      string
	SecretKey                    string
	SessionTokenValidityDuration time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and PUFSeed must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.GatewayID = common.DefaultGatewayID
	c.GroupBits = 64
	c.PUFSeed = "gw1-puf-seed"
	c.SecretKey = "secretKey"
	c.SessionTokenValidityDuration = 5 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
