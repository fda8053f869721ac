package config

import "time"

// Config holds runtime settings for the device client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC server.
//   - UserID: the identity registered with the RA.
//   - HelperStoreLocation: where helper data lives ("memory",
//     "sqlite:<path>" or "s3://<bucket>/<prefix>").
//   - SealPassphrase: when set, helper data is encrypted at rest.
//   - BiometricSampleFile: file holding the biometric sample; empty means
//     password-only.
//   - RPCTimeout: per-call deadline.
//   - S3Region / S3User / S3Password / S3BaseEndpoint: S3-compatible
//     storage settings for the s3:// location.
type Config struct {
	ServerEndpointAddr  string
	UserID              string
	HelperStoreLocation string
	SealPassphrase      string
	BiometricSampleFile string
	RPCTimeout          time.Duration
	S3Region            string
	S3User              string
	S3Password          string
	S3BaseEndpoint      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.UserID = "user1"
	c.HelperStoreLocation = "memory"
	c.RPCTimeout = 10 * time.Second
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
