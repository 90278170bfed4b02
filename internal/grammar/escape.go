package grammar

import (
	"bytes"

	"braces.dev/errtrace"

	"github.com/bitcointools/bip21/internal/constraints"
)

// Unescape decodes each "% HEXDIG HEXDIG" triplet of s into the byte it encodes.
// A '%' that does not start a valid triplet is reported as [ErrMalformedEscape].
// The '+' character is kept as is.
func Unescape[T constraints.Byteseq](s T) (T, error) {
	if len(s) == 0 {
		return s, nil
	}

	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !ishex(s[i+1]) || !ishex(s[i+2]) {
			return s, errtrace.Wrap(newMalformedEscapeErr(string(s), i))
		}
		n++
		i += 2
	}
	if n == 0 {
		return s, nil
	}

	var b bytes.Buffer
	b.Grow(len(s) - 2*n)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return T(b.Bytes()), nil
}

// Escape replaces each byte matched by shouldEscape with its "% HEXDIG HEXDIG" form.
// If shouldEscape is nil, every byte outside the unreserved set is escaped,
// so '%' itself and the space (as "%20") are always encoded.
func Escape[T constraints.Byteseq](s T, shouldEscape func(c byte) bool) T {
	if len(s) == 0 {
		return s
	}

	if shouldEscape == nil {
		shouldEscape = func(c byte) bool { return !IsCharUnreserved(c) }
	}

	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			b.WriteByte('%')
			b.WriteByte(upperhex[s[i]>>4])
			b.WriteByte(upperhex[s[i]&15])
			continue
		}
		b.WriteByte(s[i])
	}
	return T(b.Bytes())
}

const upperhex = "0123456789ABCDEF"

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
