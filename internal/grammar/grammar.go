// Package grammar implements the BIP-21 amount rule, the RFC 3986 character classes
// and percent-encoding used by BIP-21 query components.
package grammar

//go:generate go tool errtrace -w .

import (
	"fmt"

	"github.com/ghettovoice/abnf"

	"github.com/bitcointools/bip21/internal/constraints"
)

func init() {
	abnf.EnableNodeCache(1024)
}

type Error string

func (e Error) Error() string { return string(e) }

func (Error) Validation() bool { return true }

const ErrMalformedEscape Error = "malformed percent-encoding"

// IsAlphanumChar checks ALPHA / DIGIT rule.
func IsAlphanumChar(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// IsCharUnreserved checks the RFC 3986 unreserved rule.
func IsCharUnreserved(c byte) bool {
	switch c {
	case '-', '.', '_', '~':
		return true
	}
	return IsAlphanumChar(c)
}

func newMalformedEscapeErr(s string, pos int) error {
	end := min(pos+3, len(s))
	return fmt.Errorf("%w: %q at offset %d", ErrMalformedEscape, s[pos:end], pos) //errtrace:skip
}

// IsAmount checks the BIP-21 amount rule, extended with an optional sign.
// It does not require a digit, so "." and "-" match.
func IsAmount[T constraints.Byteseq](s T) bool {
	if len(s) == 0 {
		return false
	}

	ns := abnf.NewNodes()
	defer ns.Free()

	if err := Amount([]byte(s), ns); err != nil {
		return false
	}
	return ns.Best().Len() == len(s)
}
