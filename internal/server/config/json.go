package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gwauth/internal/flagx"
	"github.com/dmitrijs2005/gwauth/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations go through
// timex.Duration so they can be written as "5m" or as nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	GatewayID                    string         `json:"gateway_id"`
	GroupBits                    int            `json:"group_bits"`
	PUFSeed                      string         `json:"puf_seed"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
}

// parseJson overlays config with the file named by -c/-config, if any.
// Keys missing from the file keep their current values. Panics on read or
// unmarshal errors.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{
		EndpointAddrGRPC:             config.EndpointAddrGRPC,
		DatabaseDSN:                  config.DatabaseDSN,
		GatewayID:                    config.GatewayID,
		GroupBits:                    config.GroupBits,
		PUFSeed:                      config.PUFSeed,
		SecretKey:                    config.SecretKey,
		SessionTokenValidityDuration: timex.Duration{Duration: config.SessionTokenValidityDuration},
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.GatewayID = c.GatewayID
	config.GroupBits = c.GroupBits
	config.PUFSeed = c.PUFSeed
	config.SecretKey = c.SecretKey
	config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
}
