// Package bip21 parses and renders BIP-21 payment request URIs.
//
// # Overview
//
// A BIP-21 URI encodes a bitcoin payment request as a single line of text,
// suitable for links and QR codes:
//
//	bitcoin:<address>[?<key1>=<value1>[&<key2>=<value2>...]]
//
// The package recognizes the standard parameters amount, label and message,
// the lightning parameter of unified QR codes and the payjoin parameters pj and pjos.
// Any other parameter is preserved as an extension parameter in the order it appeared.
//
// # Parsing
//
// [Parse] decodes a URI with the default options:
//
//	req, err := bip21.Parse("bitcoin:1andreas3batLhQa2FawWjeyjCqyBzypd?amount=50&label=Luke-Jr")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	amt, _ := req.Amount() // 50 BTC, 5000000000 sat
//	lbl, _ := req.Label()  // "Luke-Jr"
//
// A [Decoder] can be configured with a logger, an [AddressValidator] that checks
// addresses against a network and strict handling of "req-" parameters:
//
//	dec := bip21.NewDecoder(&bip21.DecoderOptions{
//	    AddressValidator: bip21.AddressValidatorFunc(checkAddr),
//	    StrictRequired:   true,
//	})
//	req, err := dec.Decode(ctx, input)
//
// Decoding is all or nothing: scheme, address, query syntax, parameter uniqueness
// and every parameter value are validated, and the first failure is returned.
// Errors wrap the package sentinels, e.g. [ErrDuplicateParameter] or [ErrTooManyDecimalPlaces],
// and can be checked with [errors.Is]. [IsValidationErr] reports whether an error
// is caused by the input.
//
// # Rendering
//
// Payment requests are built with [NewPaymentRequest] and rendered with
// [PaymentRequest.Render] or any of the fmt verbs:
//
//	req, err := bip21.NewPaymentRequest("1andreas3batLhQa2FawWjeyjCqyBzypd",
//	    bip21.WithAmount(amount.MustNew(1000)),
//	    bip21.WithLabel("Luke-Jr"),
//	)
//	fmt.Println(req) // bitcoin:1andreas3batLhQa2FawWjeyjCqyBzypd?amount=0.00001&label=Luke-Jr
//
// Parameter keys and values are percent-encoded with the RFC 3986 unreserved set,
// so spaces become "%20", never "+". Amounts are rendered as the shortest decimal
// string of bitcoin, see [amount.Amount.String].
package bip21
