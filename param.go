package bip21

import (
	"strings"

	"braces.dev/errtrace"

	"github.com/bitcointools/bip21/amount"
	"github.com/bitcointools/bip21/internal/grammar"
)

// Keys of the recognized query parameters.
const (
	KeyAmount                     = "amount"
	KeyLabel                      = "label"
	KeyMessage                    = "message"
	KeyLightning                  = "lightning"
	KeyPayJoin                    = "pj"
	KeyPayJoinOutputSubstitution  = "pjos"
	requiredPrefix                = "req-"
	payJoinOutputSubstitutionZero = "0"
)

// IsReservedKey reports whether key is one of the recognized parameter names,
// which cannot be used as an extension parameter key.
func IsReservedKey(key string) bool {
	switch key {
	case KeyAmount, KeyLabel, KeyMessage, KeyLightning, KeyPayJoin, KeyPayJoinOutputSubstitution:
		return true
	}
	return false
}

// Parameter is a single query parameter of a payment request.
//
// The set of implementations is closed: [Label], [Message], [Lightning], [PayJoin]
// plus the amount, pjos and extension entries returned by [PaymentRequest.Parameters].
type Parameter interface {
	// Key returns the parameter name as it appears in the query.
	Key() string
	// Encode returns the "&key=value" fragment with key and value percent-encoded.
	Encode() string

	parameter()
}

// Label is the "label" parameter: a human-readable name of the recipient.
type Label string

// DecodeLabel percent-decodes a raw "label" query value.
func DecodeLabel(raw string) (Label, error) {
	v, err := grammar.Unescape(raw)
	return Label(v), errtrace.Wrap(err)
}

func (Label) Key() string { return KeyLabel }

func (l Label) Encode() string { return encodeParam(KeyLabel, string(l)) }

func (Label) parameter() {}

// Message is the "message" parameter: a note describing the payment.
type Message string

// DecodeMessage percent-decodes a raw "message" query value.
func DecodeMessage(raw string) (Message, error) {
	v, err := grammar.Unescape(raw)
	return Message(v), errtrace.Wrap(err)
}

func (Message) Key() string { return KeyMessage }

func (m Message) Encode() string { return encodeParam(KeyMessage, string(m)) }

func (Message) parameter() {}

// Lightning is the "lightning" parameter: an opaque payment request token,
// typically a bech32 encoded BOLT 11 invoice or BOLT 12 offer.
type Lightning string

// DecodeLightning percent-decodes a raw "lightning" query value.
// Tokens made of unreserved characters are returned verbatim.
func DecodeLightning(raw string) (Lightning, error) {
	v, err := grammar.Unescape(raw)
	return Lightning(v), errtrace.Wrap(err)
}

func (Lightning) Key() string { return KeyLightning }

func (l Lightning) Encode() string { return encodeParam(KeyLightning, string(l)) }

func (Lightning) parameter() {}

// PayJoin is the "pj" parameter: the payjoin endpoint URL.
type PayJoin string

// DecodePayJoin percent-decodes a raw "pj" query value.
func DecodePayJoin(raw string) (PayJoin, error) {
	v, err := grammar.Unescape(raw)
	return PayJoin(v), errtrace.Wrap(err)
}

func (PayJoin) Key() string { return KeyPayJoin }

func (p PayJoin) Encode() string { return encodeParam(KeyPayJoin, string(p)) }

func (PayJoin) parameter() {}

// Param is an extension parameter: any query parameter that is not recognized.
// Key and Value hold decoded text.
type Param struct {
	Key   string
	Value string
}

// DecodeParam percent-decodes a raw key and value of an extension parameter.
func DecodeParam(rawKey, rawValue string) (Param, error) {
	k, err := grammar.Unescape(rawKey)
	if err != nil {
		return Param{}, errtrace.Wrap(err)
	}
	v, err := grammar.Unescape(rawValue)
	if err != nil {
		return Param{}, errtrace.Wrap(err)
	}
	return Param{Key: k, Value: v}, nil
}

func (p Param) Encode() string { return encodeParam(p.Key, p.Value) }

// extParam adapts Param to the Parameter interface,
// whose Key method would otherwise clash with the Key field.
type extParam struct{ p Param }

func (e extParam) Key() string { return e.p.Key }

func (e extParam) Encode() string { return e.p.Encode() }

func (extParam) parameter() {}

type amountParam amount.Amount

func (amountParam) Key() string { return KeyAmount }

func (a amountParam) Encode() string { return "&" + KeyAmount + "=" + amount.Amount(a).String() }

func (amountParam) parameter() {}

// pjosParam is the companion of the "pj" parameter. Output substitution
// is always disallowed, so it is rendered as "pjos=0".
type pjosParam struct{}

func (pjosParam) Key() string { return KeyPayJoinOutputSubstitution }

func (pjosParam) Encode() string {
	return "&" + KeyPayJoinOutputSubstitution + "=" + payJoinOutputSubstitutionZero
}

func (pjosParam) parameter() {}

func encodeParam(key, value string) string {
	var sb strings.Builder
	key = grammar.Escape(key, nil)
	value = grammar.Escape(value, nil)
	sb.Grow(len(key) + len(value) + 2)
	sb.WriteByte('&')
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(value)
	return sb.String()
}
