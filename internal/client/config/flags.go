package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the server
//	-u string   user id
//	-l string   helper data location
//	-k string   helper data seal passphrase
//	-f string   biometric sample file
//	-r int      RPC timeout in seconds
//	-g string   S3 region
//	-su string  S3 user
//	-sp string  S3 password
//	-e string   S3 base endpoint
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-l", "-k", "-f", "-r", "-g", "-su", "-sp", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	fs.StringVar(&cfg.HelperStoreLocation, "l", cfg.HelperStoreLocation, "helper data location")
	fs.StringVar(&cfg.SealPassphrase, "k", cfg.SealPassphrase, "helper data seal passphrase")
	fs.StringVar(&cfg.BiometricSampleFile, "f", cfg.BiometricSampleFile, "biometric sample file")
	rpcTimeout := fs.Int("r", int(cfg.RPCTimeout.Seconds()), "rpc timeout (in seconds)")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3User, "su", cfg.S3User, "S3 user")
	fs.StringVar(&cfg.S3Password, "sp", cfg.S3Password, "S3 password")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RPCTimeout = time.Duration(*rpcTimeout) * time.Second
}
