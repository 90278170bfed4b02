// Package amount converts between bitcoin-denominated decimal strings, as carried
// by the BIP-21 "amount" parameter, and exact satoshi counts.
//
// Conversion never goes through binary floating point: the decimal text is matched
// against the amount grammar and scaled by [SatoshiPerBitcoin] using integer
// arithmetic, so every value in the range [0, [MaxSatoshi]] round-trips exactly.
//
//	a, err := amount.Parse("0.00001")
//	// a.Sat() == 1000
//	// a.String() == "0.00001"
package amount

//go:generate go tool errtrace -w .

import (
	"fmt"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/bitcointools/bip21/internal/constraints"
	"github.com/bitcointools/bip21/internal/errorutil"
	"github.com/bitcointools/bip21/internal/grammar"
	"github.com/bitcointools/bip21/internal/util"
)

type Error string

func (e Error) Error() string { return string(e) }

func (Error) Validation() bool { return true }

const (
	ErrMalformedAmount      Error = "malformed amount"
	ErrNegativeAmount       Error = "negative amount"
	ErrAmountTooLarge       Error = "amount above possible number of bitcoin"
	ErrTooManyDecimalPlaces Error = "amount has sub-satoshi precision"
	ErrExceedsMaximum       Error = "satoshi amount exceeds maximum"
)

const (
	// SatoshiPerBitcoin is the number of satoshis in one bitcoin.
	SatoshiPerBitcoin = 100_000_000
	// MaxBitcoin is the largest whole-bitcoin amount a request may carry.
	MaxBitcoin = 21_000_000
	// MaxSatoshi is [MaxBitcoin] expressed in satoshis.
	MaxSatoshi = MaxBitcoin * SatoshiPerBitcoin

	decimals = 8
)

var maxWholeDigits = strconv.Itoa(MaxBitcoin)

// Amount is an exact count of satoshis.
//
// The zero value is a valid amount of 0 sat. Values obtained with [New] or [Parse]
// are always within [0, MaxSatoshi]; values built with a plain conversion
// can be checked with [Amount.Validate].
type Amount int64

// New returns the amount of sat satoshis.
// It fails with [ErrNegativeAmount] or [ErrExceedsMaximum] if sat is out of [0, MaxSatoshi].
func New(sat int64) (Amount, error) {
	if sat < 0 {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrNegativeAmount, "%d sat", sat))
	}
	if sat > MaxSatoshi {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrExceedsMaximum, "%d sat > %d sat", sat, int64(MaxSatoshi)))
	}
	return Amount(sat), nil
}

// MustNew is like [New] but panics on error.
func MustNew(sat int64) Amount { return util.Must2(New(sat)) }

// Parse parses a bitcoin-denominated decimal string, e.g. "0.00001" or "21000000",
// into an exact satoshi amount.
//
// Accepted syntax is an optional sign, digits, an optional '.' and fractional digits,
// with at least one digit overall. Zeros beyond the eighth fractional digit are
// insignificant; any other digit there fails with [ErrTooManyDecimalPlaces].
// Values below zero fail with [ErrNegativeAmount] and values above [MaxBitcoin]
// fail with [ErrAmountTooLarge].
func Parse[T constraints.Byteseq](s T) (Amount, error) {
	src := string(s)
	neg, whole, frac, ok := scan(src)
	if !ok {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedAmount, "%q", src))
	}

	whole = strings.TrimLeft(whole, "0")
	frac = strings.TrimRight(frac, "0")
	if neg && (whole != "" || frac != "") {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrNegativeAmount, "%q", src))
	}
	if exceedsMaxBitcoin(whole, frac) {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrAmountTooLarge, "%q", src))
	}
	if len(frac) > decimals {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrTooManyDecimalPlaces, "%q", src))
	}

	var sat int64
	if whole != "" {
		w, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedAmount, err))
		}
		sat = w * SatoshiPerBitcoin
	}
	if frac != "" {
		f, err := strconv.ParseInt(frac+strings.Repeat("0", decimals-len(frac)), 10, 64)
		if err != nil {
			return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedAmount, err))
		}
		sat += f
	}
	return errtrace.Wrap2(New(sat))
}

// scan splits s into its sign, whole digits and fractional digits.
func scan(s string) (neg bool, whole, frac string, ok bool) {
	if !grammar.IsAmount(s) {
		return false, "", "", false
	}
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ = strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return false, "", "", false
	}
	return neg, whole, frac, true
}

// exceedsMaxBitcoin compares the decimal whole.frac, with leading zeros of whole
// and trailing zeros of frac already trimmed, against MaxBitcoin.
func exceedsMaxBitcoin(whole, frac string) bool {
	switch {
	case len(whole) != len(maxWholeDigits):
		return len(whole) > len(maxWholeDigits)
	case whole != maxWholeDigits:
		return whole > maxWholeDigits
	default:
		return frac != ""
	}
}

// Sat returns the amount in satoshis.
func (a Amount) Sat() int64 { return int64(a) }

// Validate checks that the amount is within [0, MaxSatoshi].
func (a Amount) Validate() error {
	_, err := New(int64(a))
	return errtrace.Wrap(err)
}

// String renders the amount in bitcoin with no trailing fractional zeros and no
// trailing decimal point, e.g. 100000000 -> "1", 10000000 -> "0.1", 1 -> "0.00000001".
func (a Amount) String() string {
	sat := int64(a)
	var sign string
	u := uint64(sat)
	if sat < 0 {
		sign = "-"
		u = uint64(-(sat + 1)) + 1
	}

	whole := strconv.FormatUint(u/SatoshiPerBitcoin, 10)
	rem := u % SatoshiPerBitcoin
	if rem == 0 {
		return sign + whole
	}
	frac := strconv.FormatUint(rem, 10)
	frac = strings.Repeat("0", decimals-len(frac)) + frac
	return sign + whole + "." + strings.TrimRight(frac, "0")
}

// Format implements [fmt.Formatter].
//
//   - %s, %v: bitcoin decimal string;
//   - %+s, %+v: bitcoin decimal string with "BTC" unit;
//   - %q: quoted bitcoin decimal string;
//   - %d and any other verb: satoshi count.
func (a Amount) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		if f.Flag('+') {
			fmt.Fprint(f, a.String()+" BTC")
			return
		}
		fmt.Fprint(f, a.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(a.String()))
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), int64(a))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (a Amount) MarshalText() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := Parse(text)
	if err != nil {
		*a = 0
		return errtrace.Wrap(err)
	}
	*a = v
	return nil
}
