package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/gwauth/internal/flagx"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/simulate"
)

func main() {

	s := simulate.DefaultScenario()

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.IntVar(&s.Bits, "b", s.Bits, "group modulus size in bits")
	fs.StringVar(&s.GatewayID, "i", s.GatewayID, "gateway id")
	fs.StringVar(&s.UserID, "u", s.UserID, "user id")
	verbose := fs.Bool("v", false, "log protocol steps to stderr")
	if err := flagx.ParseOwn(fs, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.Nop()
	if *verbose {
		logger = logging.NewJSONLogger(os.Stderr, slog.LevelDebug)
	}

	res, err := simulate.Run(context.Background(), s, os.Stdout, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if !res.ReAuthenticated {
		os.Exit(1)
	}

}
