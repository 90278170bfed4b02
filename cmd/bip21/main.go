// Command bip21 decodes and encodes BIP-21 payment request URIs.
//
// Usage:
//
//	bip21 [--network mainnet] [--log console] decode 'bitcoin:1andreas3batLhQa2FawWjeyjCqyBzypd?amount=50'
//	bip21 encode --address 1andreas3batLhQa2FawWjeyjCqyBzypd --amount 50 --label Luke-Jr
//
// With no arguments decode reads URIs from stdin, one per line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bitcointools/bip21/log"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "bip21"
	app.Usage = "Decode and encode BIP-21 payment request URIs"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "network",
			Value:   networkNone,
			Usage:   "validate addresses against the network: mainnet, testnet, signet, regtest or none",
			EnvVars: []string{"BIP21_NETWORK"},
		},
		&cli.StringFlag{
			Name:    "log",
			Value:   "none",
			Usage:   "debug log format written to stderr: none, console or dev",
			EnvVars: []string{"BIP21_LOG"},
		},
		&cli.BoolFlag{
			Name:    "strict-required",
			Usage:   "reject unknown parameters with the req- prefix",
			EnvVars: []string{"BIP21_STRICT_REQUIRED"},
		},
	}
	app.Before = setupLog
	app.Commands = append(app.Commands, decodeCommand, encodeCommand)

	return app
}

func setupLog(c *cli.Context) error {
	switch f := c.String("log"); f {
	case "", "none":
		log.SetDefault(log.Noop)
	case "console":
		log.SetDefault(log.NewConsole(c.App.ErrWriter, slog.LevelDebug))
	case "dev":
		log.SetDefault(log.NewDev(c.App.ErrWriter, slog.LevelDebug))
	default:
		return fmt.Errorf("unknown log format %q", f)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[bip21] %v\n", err)
	os.Exit(1)
}
