package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gwauth/internal/flagx"
	"github.com/dmitrijs2005/gwauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	UserID              string         `json:"user_id"`
	HelperStoreLocation string         `json:"helper_store_location"`
	SealPassphrase      string         `json:"seal_passphrase"`
	BiometricSampleFile string         `json:"biometric_sample_file"`
	RPCTimeout          timex.Duration `json:"rpc_timeout"`
	S3Region            string         `json:"s3_region"`
	S3User              string         `json:"s3_user"`
	S3Password          string         `json:"s3_password"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Absent keys keep their current values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		ServerEndpointAddr:  cfg.ServerEndpointAddr,
		UserID:              cfg.UserID,
		HelperStoreLocation: cfg.HelperStoreLocation,
		SealPassphrase:      cfg.SealPassphrase,
		BiometricSampleFile: cfg.BiometricSampleFile,
		RPCTimeout:          timex.Duration{Duration: cfg.RPCTimeout},
		S3Region:            cfg.S3Region,
		S3User:              cfg.S3User,
		S3Password:          cfg.S3Password,
		S3BaseEndpoint:      cfg.S3BaseEndpoint,
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.UserID = jc.UserID
	cfg.HelperStoreLocation = jc.HelperStoreLocation
	cfg.SealPassphrase = jc.SealPassphrase
	cfg.BiometricSampleFile = jc.BiometricSampleFile
	cfg.RPCTimeout = jc.RPCTimeout.Duration
	cfg.S3Region = jc.S3Region
	cfg.S3User = jc.S3User
	cfg.S3Password = jc.S3Password
	cfg.S3BaseEndpoint = jc.S3BaseEndpoint
}
