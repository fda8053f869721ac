package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-u", "alice", "-l", "s3://helpers/dev", "-k", "pass",
			"-f", "print.bin", "-r", "3", "-g", "eu-west-1", "-su", "minio", "-sp", "minio123",
			"-e", "http://127.0.0.1:9000",
		}, expectPanic: false,
			expected: &Config{
				ServerEndpointAddr:  "127.0.0.1:9090",
				UserID:              "alice",
				HelperStoreLocation: "s3://helpers/dev",
				SealPassphrase:      "pass",
				BiometricSampleFile: "print.bin",
				RPCTimeout:          3 * time.Second,
				S3Region:            "eu-west-1",
				S3User:              "minio",
				S3Password:          "minio123",
				S3BaseEndpoint:      "http://127.0.0.1:9000",
			}},
		{name: "Test2 incorrect timeout", args: []string{"cmd", "-a", "127.0.0.1:9090", "-r", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
