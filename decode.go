package bip21

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"braces.dev/errtrace"
	"github.com/qmuntal/stateless"

	"github.com/bitcointools/bip21/amount"
	"github.com/bitcointools/bip21/internal/constraints"
	"github.com/bitcointools/bip21/internal/errorutil"
	"github.com/bitcointools/bip21/internal/grammar"
	"github.com/bitcointools/bip21/internal/util"
	"github.com/bitcointools/bip21/log"
)

// DecoderOptions are the options of a [Decoder].
type DecoderOptions struct {
	// Log is the logger used by the decoder.
	// If nil, the [log.Default] is used.
	Log *slog.Logger
	// AddressValidator is called with the address of every successfully parsed request.
	// If nil, addresses are accepted as is.
	AddressValidator AddressValidator
	// StrictRequired makes the decoder reject unknown parameters with the "req-" prefix
	// with [ErrUnsupportedRequirement]. Otherwise they are kept as extension parameters.
	StrictRequired bool
}

func (o *DecoderOptions) log() *slog.Logger {
	if o == nil || o.Log == nil {
		return log.Default()
	}
	return o.Log
}

func (o *DecoderOptions) addrValidator() AddressValidator {
	if o == nil {
		return nil
	}
	return o.AddressValidator
}

func (o *DecoderOptions) strictRequired() bool {
	if o == nil {
		return false
	}
	return o.StrictRequired
}

// Decoder decodes BIP-21 URIs into payment requests.
//
// A Decoder holds no per-call state and is safe for concurrent use.
type Decoder struct {
	opts DecoderOptions
}

// NewDecoder creates a new decoder.
// Options are optional and can be nil, in which case default options will be used.
func NewDecoder(opts *DecoderOptions) *Decoder {
	d := new(Decoder)
	if opts != nil {
		d.opts = *opts
	}
	return d
}

var defDecoder = NewDecoder(nil)

// Parse decodes a BIP-21 URI with the default decoder.
func Parse[T constraints.Byteseq](s T) (*PaymentRequest, error) {
	return errtrace.Wrap2(defDecoder.Decode(context.Background(), string(s)))
}

// MustParse is like [Parse] but panics on error.
func MustParse[T constraints.Byteseq](s T) *PaymentRequest {
	return util.Must2(Parse(s))
}

// Decoding stages.
const (
	decStart   = "start"
	decScheme  = "scheme"
	decAddress = "address"
	decQuery   = "query"
	decFields  = "fields"
	decDone    = "done"
)

const (
	decEvtCheckScheme = "check_scheme"
	decEvtSplit       = "split"
	decEvtTokenize    = "tokenize"
	decEvtExtract     = "extract"
	decEvtFinish      = "finish"
)

// Decode parses s as a BIP-21 URI.
//
// Decoding runs through the stages scheme check, address/query split,
// query tokenization, field extraction and assembly. The first failing stage
// aborts the decode, no partial request is ever returned.
// The returned errors can be matched with [errors.Is] against the package sentinels,
// see also [IsValidationErr].
func (d *Decoder) Decode(ctx context.Context, s string) (*PaymentRequest, error) {
	run := &decodeRun{dec: d, input: s}
	fsm := run.newFSM()

	for evt := decEvtCheckScheme; evt != ""; {
		run.next = ""
		if err := fsm.FireCtx(ctx, evt); err != nil {
			d.opts.log().LogAttrs(ctx, slog.LevelDebug,
				"failed to decode payment request",
				slog.Any("input", log.CalcValue(func() any { return util.Ellipsis(s, 64) })),
				slog.Any("stage", fsm.MustState()),
				slog.Any("error", err),
			)
			return nil, errtrace.Wrap(err)
		}
		evt = run.next
	}

	d.opts.log().LogAttrs(ctx, slog.LevelDebug, "payment request decoded", slog.Any("request", run.req))
	return run.req, nil
}

// rawParam is a query parameter with its key decoded and its value as found in the query.
type rawParam struct {
	key, rawKey, value string
}

// decodeRun holds the state of a single Decode call.
type decodeRun struct {
	dec   *Decoder
	input string

	rest, address, query string

	params []rawParam
	opts   []Option
	req    *PaymentRequest

	next string
}

func (r *decodeRun) newFSM() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(decStart)

	fsm.Configure(decStart).
		Permit(decEvtCheckScheme, decScheme)

	fsm.Configure(decScheme).
		OnEntry(r.actCheckScheme).
		Permit(decEvtSplit, decAddress)

	fsm.Configure(decAddress).
		OnEntry(r.actSplit).
		Permit(decEvtTokenize, decQuery).
		Permit(decEvtFinish, decDone)

	fsm.Configure(decQuery).
		OnEntry(r.actTokenize).
		Permit(decEvtExtract, decFields)

	fsm.Configure(decFields).
		OnEntry(r.actExtract).
		Permit(decEvtFinish, decDone)

	fsm.Configure(decDone).
		OnEntry(r.actAssemble)

	fsm.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		r.dec.opts.log().LogAttrs(ctx, slog.LevelDebug,
			"decode stage entered",
			slog.Any("from", t.Source),
			slog.Any("to", t.Destination),
			slog.Any("trigger", t.Trigger),
		)
	})

	return fsm
}

func (r *decodeRun) actCheckScheme(context.Context, ...any) error {
	scheme, rest, ok := strings.Cut(r.input, ":")
	if !ok {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidScheme,
			"%q, expected %q", util.Ellipsis(r.input, len(Scheme)+1), Scheme+":"))
	}
	if !util.EqFold(scheme, Scheme) {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidScheme,
			"%q, expected %q", util.Ellipsis(scheme, 16)+":", Scheme+":"))
	}
	r.rest = rest
	r.next = decEvtSplit
	return nil
}

func (r *decodeRun) actSplit(context.Context, ...any) error {
	addr, query, hasQuery := strings.Cut(r.rest, "?")
	if addr == "" {
		return errtrace.Wrap(ErrMissingAddress)
	}
	r.address = addr
	if !hasQuery {
		r.next = decEvtFinish
		return nil
	}
	if query == "" {
		return errtrace.Wrap(ErrEmptyQuery)
	}
	r.query = query
	r.next = decEvtTokenize
	return nil
}

func (r *decodeRun) actTokenize(context.Context, ...any) error {
	seen := make(map[string]struct{})
	for tok := range strings.SplitSeq(r.query, "&") {
		rawKey, val, ok := strings.Cut(tok, "=")
		switch {
		case !ok:
			return errtrace.Wrap(newParamErr(ErrMissingSeparator, tok))
		case rawKey == "":
			return errtrace.Wrap(newParamErr(ErrEmptyKey, tok))
		case val == "":
			return errtrace.Wrap(newParamErr(ErrEmptyValue, tok))
		}

		key, err := grammar.Unescape(rawKey)
		if err != nil {
			return errtrace.Wrap(fmt.Errorf("parameter %q: %w", tok, err))
		}
		if _, dup := seen[key]; dup {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrDuplicateParameter, "%q", key))
		}
		seen[key] = struct{}{}
		r.params = append(r.params, rawParam{key: key, rawKey: rawKey, value: val})
	}
	r.next = decEvtExtract
	return nil
}

func (r *decodeRun) actExtract(context.Context, ...any) error {
	strict := r.dec.opts.strictRequired()
	for _, p := range r.params {
		opt, err := r.extract(p, strict)
		if err != nil {
			return errtrace.Wrap(err)
		}
		if opt != nil {
			r.opts = append(r.opts, opt)
		}
	}
	r.next = decEvtFinish
	return nil
}

func (*decodeRun) extract(p rawParam, strict bool) (Option, error) {
	switch p.key {
	case KeyAmount:
		a, err := amount.Parse(p.value)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		return WithAmount(a), nil
	case KeyLabel:
		v, err := DecodeLabel(p.value)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("%s: %w", p.key, err))
		}
		return WithLabel(string(v)), nil
	case KeyMessage:
		v, err := DecodeMessage(p.value)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("%s: %w", p.key, err))
		}
		return WithMessage(string(v)), nil
	case KeyLightning:
		v, err := DecodeLightning(p.value)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("%s: %w", p.key, err))
		}
		return WithLightning(string(v)), nil
	case KeyPayJoin:
		v, err := DecodePayJoin(p.value)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("%s: %w", p.key, err))
		}
		return WithPayJoin(string(v)), nil
	case KeyPayJoinOutputSubstitution:
		// derived from pj
		return nil, nil
	}

	if strict && strings.HasPrefix(p.key, requiredPrefix) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrUnsupportedRequirement, "%q", p.key))
	}
	ext, err := DecodeParam(p.rawKey, p.value)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%s: %w", p.key, err))
	}
	return WithExtension(ext.Key, ext.Value), nil
}

func (r *decodeRun) actAssemble(ctx context.Context, _ ...any) error {
	req, err := NewPaymentRequest(r.address, r.opts...)
	if err != nil {
		return errtrace.Wrap(err)
	}

	if v := r.dec.opts.addrValidator(); v != nil {
		if err := v.ValidateAddress(ctx, req.address); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return errtrace.Wrap(err)
			}
			return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidAddress, err))
		}
	}

	r.req = req
	return nil
}
