package bip21

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"braces.dev/errtrace"

	"github.com/bitcointools/bip21/amount"
	"github.com/bitcointools/bip21/internal/errorutil"
	"github.com/bitcointools/bip21/internal/util"
)

// Scheme is the URI scheme of payment requests.
const Scheme = "bitcoin"

// PaymentRequest is a decoded BIP-21 URI.
//
// A PaymentRequest is immutable: it is built with [NewPaymentRequest] or returned by
// [Parse] and [Decoder.Decode], and exposes its fields through accessors only.
// The zero value is not a valid request.
type PaymentRequest struct {
	address   string
	amount    *amount.Amount
	label     *Label
	message   *Message
	lightning *Lightning
	payjoin   *PayJoin
	exts      []Param
}

// Option sets an optional field of a [PaymentRequest] under construction.
type Option func(r *PaymentRequest) error

// WithAmount sets the requested amount.
func WithAmount(a amount.Amount) Option {
	return func(r *PaymentRequest) error {
		if r.amount != nil {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrDuplicateParameter, "%q", KeyAmount))
		}
		if err := a.Validate(); err != nil {
			return errtrace.Wrap(err)
		}
		r.amount = &a
		return nil
	}
}

// WithLabel sets the label of the recipient.
func WithLabel(label string) Option {
	return func(r *PaymentRequest) error {
		return errtrace.Wrap(setOptional(&r.label, KeyLabel, Label(label)))
	}
}

// WithMessage sets the message describing the payment.
func WithMessage(msg string) Option {
	return func(r *PaymentRequest) error {
		return errtrace.Wrap(setOptional(&r.message, KeyMessage, Message(msg)))
	}
}

// WithLightning sets the lightning payment request.
func WithLightning(pr string) Option {
	return func(r *PaymentRequest) error {
		return errtrace.Wrap(setOptional(&r.lightning, KeyLightning, Lightning(pr)))
	}
}

// WithPayJoin sets the payjoin endpoint URL.
// A request with a payjoin endpoint always disallows output substitution.
func WithPayJoin(endpoint string) Option {
	return func(r *PaymentRequest) error {
		return errtrace.Wrap(setOptional(&r.payjoin, KeyPayJoin, PayJoin(endpoint)))
	}
}

// WithExtension appends an extension parameter.
// The key must not be one of the recognized parameter names (see [IsReservedKey])
// and must not repeat a key already added.
func WithExtension(key, value string) Option {
	return func(r *PaymentRequest) error {
		switch {
		case key == "":
			return errtrace.Wrap(newParamErr(ErrEmptyKey, key+"="+value))
		case value == "":
			return errtrace.Wrap(newParamErr(ErrEmptyValue, key+"="+value))
		case IsReservedKey(key):
			return errtrace.Wrap(errorutil.NewWrapperError(ErrReservedParameter, "%q", key))
		}
		if _, ok := r.Extension(key); ok {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrDuplicateParameter, "%q", key))
		}
		r.exts = append(r.exts, Param{Key: key, Value: value})
		return nil
	}
}

func setOptional[T ~string](field **T, key string, v T) error {
	if *field != nil {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrDuplicateParameter, "%q", key))
	}
	if v == "" {
		return errtrace.Wrap(newParamErr(ErrEmptyValue, key+"="))
	}
	*field = &v
	return nil
}

// NewPaymentRequest builds a payment request to the given address.
//
// The address is opaque to this package and only has to be non-empty;
// use an [AddressValidator] with a [Decoder] to check it against a network.
func NewPaymentRequest(address string, opts ...Option) (*PaymentRequest, error) {
	if address == "" {
		return nil, errtrace.Wrap(ErrMissingAddress)
	}

	r := &PaymentRequest{address: address}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	return r, nil
}

// MustNewPaymentRequest is like [NewPaymentRequest] but panics on error.
func MustNewPaymentRequest(address string, opts ...Option) *PaymentRequest {
	return util.Must2(NewPaymentRequest(address, opts...))
}

// Address returns the recipient address.
func (r *PaymentRequest) Address() string {
	if r == nil {
		return ""
	}
	return r.address
}

// Amount returns the requested amount.
func (r *PaymentRequest) Amount() (amount.Amount, bool) { return getOptional(r, r.getAmount) }

func (r *PaymentRequest) getAmount() *amount.Amount { return r.amount }

// Label returns the label of the recipient.
func (r *PaymentRequest) Label() (string, bool) {
	v, ok := getOptional(r, func() *Label { return r.label })
	return string(v), ok
}

// Message returns the message describing the payment.
func (r *PaymentRequest) Message() (string, bool) {
	v, ok := getOptional(r, func() *Message { return r.message })
	return string(v), ok
}

// Lightning returns the lightning payment request.
func (r *PaymentRequest) Lightning() (string, bool) {
	v, ok := getOptional(r, func() *Lightning { return r.lightning })
	return string(v), ok
}

// PayJoin returns the payjoin endpoint URL.
func (r *PaymentRequest) PayJoin() (string, bool) {
	v, ok := getOptional(r, func() *PayJoin { return r.payjoin })
	return string(v), ok
}

// PayJoinOutputSubstitution reports whether the receiver allows the sender to
// substitute the payment output. The flag is present only with a payjoin endpoint
// and is then always false.
func (r *PaymentRequest) PayJoinOutputSubstitution() (allowed, ok bool) {
	if r == nil || r.payjoin == nil {
		return false, false
	}
	return false, true
}

func getOptional[T any](r *PaymentRequest, get func() *T) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	if v := get(); v != nil {
		return *v, true
	}
	return zero, false
}

// Extensions returns a copy of the extension parameters in insertion order.
func (r *PaymentRequest) Extensions() []Param {
	if r == nil || len(r.exts) == 0 {
		return nil
	}
	return slices.Clone(r.exts)
}

// Extension returns the value of the extension parameter with the given key.
// Keys are case-sensitive.
func (r *PaymentRequest) Extension(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, p := range r.exts {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Parameters returns the query parameters of the request in rendering order:
// amount, label, message, lightning, pj followed by pjos, then extensions.
func (r *PaymentRequest) Parameters() []Parameter {
	if r == nil {
		return nil
	}

	var ps []Parameter
	if r.amount != nil {
		ps = append(ps, amountParam(*r.amount))
	}
	if r.label != nil {
		ps = append(ps, *r.label)
	}
	if r.message != nil {
		ps = append(ps, *r.message)
	}
	if r.lightning != nil {
		ps = append(ps, *r.lightning)
	}
	if r.payjoin != nil {
		ps = append(ps, *r.payjoin, pjosParam{})
	}
	for _, p := range r.exts {
		ps = append(ps, extParam{p})
	}
	return ps
}

// RenderTo writes the URI form of the request to w.
func (r *PaymentRequest) RenderTo(w io.Writer) (num int, err error) {
	if r == nil {
		return 0, nil
	}

	cw := util.GetStringBuilder()
	defer util.FreeStringBuilder(cw)

	cw.WriteString(Scheme)
	cw.WriteByte(':')
	cw.WriteString(r.address)

	if ps := r.Parameters(); len(ps) > 0 {
		qs := util.GetStringBuilder()
		defer util.FreeStringBuilder(qs)

		for _, p := range ps {
			qs.WriteString(p.Encode())
		}
		cw.WriteByte('?')
		cw.WriteString(qs.String()[1:])
	}
	return errtrace.Wrap2(io.WriteString(w, cw.String()))
}

// Render returns the URI form of the request, e.g.
//
//	bitcoin:1andreas3batLhQa2FawWjeyjCqyBzypd?amount=50&label=Luke-Jr
func (r *PaymentRequest) Render() string {
	if r == nil {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	r.RenderTo(sb) //nolint:errcheck
	return sb.String()
}

// String returns the URI form of the request.
func (r *PaymentRequest) String() string { return r.Render() }

// Format implements [fmt.Formatter] for custom formatting of the request.
func (r *PaymentRequest) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		if f.Flag('+') {
			r.RenderTo(f) //nolint:errcheck
			return
		}
		fmt.Fprint(f, r.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(r.String()))
		return
	default:
		type hideMethods PaymentRequest
		type PaymentRequest hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*PaymentRequest)(r))
		return
	}
}

// LogValue implements [slog.LogValuer].
func (r *PaymentRequest) LogValue() slog.Value {
	if r == nil {
		return slog.Value{}
	}

	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs, slog.String("address", r.address))
	if r.amount != nil {
		attrs = append(attrs, slog.Any("amount", *r.amount))
	}
	if r.label != nil {
		attrs = append(attrs, slog.String("label", string(*r.label)))
	}
	if r.message != nil {
		attrs = append(attrs, slog.String("message", string(*r.message)))
	}
	if r.lightning != nil {
		attrs = append(attrs, slog.String("lightning", util.Ellipsis(string(*r.lightning), 24)))
	}
	if r.payjoin != nil {
		attrs = append(attrs, slog.String("pj", string(*r.payjoin)), slog.Bool("pjos", false))
	}
	if len(r.exts) > 0 {
		attrs = append(attrs, slog.Int("extensions", len(r.exts)))
	}
	return slog.GroupValue(attrs...)
}

// Equal compares this request with another field by field.
// Extension parameters are compared in order.
func (r *PaymentRequest) Equal(val any) bool {
	var other *PaymentRequest
	switch v := val.(type) {
	case PaymentRequest:
		other = &v
	case *PaymentRequest:
		other = v
	default:
		return false
	}

	if r == other {
		return true
	} else if r == nil || other == nil {
		return false
	}

	return r.address == other.address &&
		eqOptional(r.amount, other.amount) &&
		eqOptional(r.label, other.label) &&
		eqOptional(r.message, other.message) &&
		eqOptional(r.lightning, other.lightning) &&
		eqOptional(r.payjoin, other.payjoin) &&
		slices.Equal(r.exts, other.exts)
}

func eqOptional[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// MarshalText implements [encoding.TextMarshaler].
func (r *PaymentRequest) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (r *PaymentRequest) UnmarshalText(text []byte) error {
	r1, err := Parse(text)
	if err != nil {
		*r = PaymentRequest{}
		return errtrace.Wrap(err)
	}
	*r = *r1
	return nil
}
