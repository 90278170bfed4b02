package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bitcointools/bip21"
	"github.com/bitcointools/bip21/amount"
)

var encodeCommand = &cli.Command{
	Name:  "encode",
	Usage: "Encode a payment request URI",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Usage:    "recipient address",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "amount in BTC, e.g. 0.00001",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "label of the recipient",
		},
		&cli.StringFlag{
			Name:  "message",
			Usage: "message describing the payment",
		},
		&cli.StringFlag{
			Name:  "lightning",
			Usage: "lightning payment request",
		},
		&cli.StringFlag{
			Name:  "pj",
			Usage: "payjoin endpoint URL",
		},
		&cli.StringSliceFlag{
			Name:  "param",
			Usage: "extension parameter as key=value, can be repeated",
		},
	},
	Action: encodeURI,
}

func encodeURI(c *cli.Context) error {
	addr := c.String("address")

	val, err := addressValidator(c.String("network"))
	if err != nil {
		return err
	}
	if val != nil {
		if err := val.ValidateAddress(c.Context, addr); err != nil {
			return err
		}
	}

	var opts []bip21.Option
	if s := c.String("amount"); s != "" {
		amt, err := amount.Parse(s)
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		opts = append(opts, bip21.WithAmount(amt))
	}
	for _, f := range []struct {
		name string
		opt  func(string) bip21.Option
	}{
		{"label", bip21.WithLabel},
		{"message", bip21.WithMessage},
		{"lightning", bip21.WithLightning},
		{"pj", bip21.WithPayJoin},
	} {
		if v := c.String(f.name); v != "" {
			opts = append(opts, f.opt(v))
		}
	}
	for _, p := range c.StringSlice("param") {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid parameter %q, want key=value", p)
		}
		opts = append(opts, bip21.WithExtension(k, v))
	}

	req, err := bip21.NewPaymentRequest(addr, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, req.String())
	return nil
}
