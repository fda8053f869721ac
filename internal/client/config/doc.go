// Package config loads runtime configuration for the device client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the RPC timeout, so it can be a
// string like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "user_id": "user1",
//	  "helper_store_location": "sqlite:helper.db",
//	  "rpc_timeout": "10s"
//	}
//
// The seal passphrase and S3 password can be set in the file, but flags keep
// them out of files on shared machines.
package config
