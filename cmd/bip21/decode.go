package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bitcointools/bip21"
)

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "Decode payment request URIs",
	ArgsUsage: "[uri...]",
	Description: `Decode each URI given as argument, or each line of stdin when no
arguments are given, and print its fields.`,
	Action: decodeURIs,
}

func decodeURIs(c *cli.Context) error {
	val, err := addressValidator(c.String("network"))
	if err != nil {
		return err
	}
	dec := bip21.NewDecoder(&bip21.DecoderOptions{
		AddressValidator: val,
		StrictRequired:   c.Bool("strict-required"),
	})

	uris := c.Args().Slice()
	if len(uris) == 0 {
		sc := bufio.NewScanner(c.App.Reader)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				uris = append(uris, line)
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	if len(uris) == 0 {
		return fmt.Errorf("no URI to decode")
	}

	for i, uri := range uris {
		req, err := dec.Decode(c.Context, uri)
		if err != nil {
			return fmt.Errorf("decode %q: %w", uri, err)
		}
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		printRequest(c.App.Writer, req)
	}
	return nil
}

func printRequest(w io.Writer, req *bip21.PaymentRequest) {
	field := func(name, val string) { fmt.Fprintf(w, "%-10s %s\n", name+":", val) }

	field("address", req.Address())
	if amt, ok := req.Amount(); ok {
		field("amount", fmt.Sprintf("%+s (%d sat)", amt, amt))
	}
	if v, ok := req.Label(); ok {
		field("label", v)
	}
	if v, ok := req.Message(); ok {
		field("message", v)
	}
	if v, ok := req.Lightning(); ok {
		field("lightning", v)
	}
	if v, ok := req.PayJoin(); ok {
		field("pj", v)
	}
	if allowed, ok := req.PayJoinOutputSubstitution(); ok {
		field("pjos", fmt.Sprint(allowed))
	}
	for _, p := range req.Extensions() {
		field(p.Key, p.Value)
	}
}
