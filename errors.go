package bip21

//go:generate go tool errtrace -w .

import (
	"github.com/bitcointools/bip21/amount"
	"github.com/bitcointools/bip21/internal/errorutil"
	"github.com/bitcointools/bip21/internal/grammar"
)

// Error is a validation error reported while decoding or building a payment request.
type Error string

func (e Error) Error() string { return string(e) }

func (Error) Validation() bool { return true }

const (
	ErrInvalidScheme          Error = "invalid scheme"
	ErrMissingAddress         Error = "missing address"
	ErrEmptyQuery             Error = "empty query"
	ErrMissingSeparator       Error = "parameter has no separator"
	ErrEmptyKey               Error = "parameter has an empty key"
	ErrEmptyValue             Error = "parameter has an empty value"
	ErrDuplicateParameter     Error = "duplicate parameter"
	ErrReservedParameter      Error = "reserved parameter"
	ErrInvalidAddress         Error = "invalid address"
	ErrUnsupportedRequirement Error = "unsupported required parameter"
)

// Errors of the amount and percent-encoding codecs.
const (
	ErrMalformedEscape      = grammar.ErrMalformedEscape
	ErrMalformedAmount      = amount.ErrMalformedAmount
	ErrNegativeAmount       = amount.ErrNegativeAmount
	ErrAmountTooLarge       = amount.ErrAmountTooLarge
	ErrTooManyDecimalPlaces = amount.ErrTooManyDecimalPlaces
	ErrExceedsMaximum       = amount.ErrExceedsMaximum
)

// IsValidationErr reports whether err is caused by malformed or out-of-range input,
// as opposed to a failure of an external collaborator such as an [AddressValidator].
// Errors wrapped with [ErrInvalidAddress] are validation errors.
func IsValidationErr(err error) bool { return errorutil.IsValidationErr(err) }

func newParamErr(sentinel error, token string) error {
	return errorutil.NewWrapperError(sentinel, "parameter %q", token) //errtrace:skip
}
