// Package hybrid owns the readable byte encoding used at the oracle boundary.
//
// Ownership boundary:
// - raw bytes to readable ASCII/hex-token form
// - readable form back to exact bytes
// - token classification primitives
package hybrid

import "strings"

const hexDigits = "0123456789abcdef"

// Decode renders raw bytes in readable form: tab, LF, CR and printable ASCII
// stay literal, every other byte becomes a space-wrapped lowercase " 0xhh "
// token. Decode followed by Encode is byte-exact for any input.
func Decode(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if isReadable(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(' ')
		b.WriteByte('0')
		b.WriteByte('x')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
		b.WriteByte(' ')
	}
	return b.String()
}

// Encode reassembles readable form into raw bytes. The string is split on
// every single space; a token matching 0x plus one or two hex digits decodes
// to one byte, anything else is literal text. A space byte is restored at a
// token boundary only when neither side is a binary token: the spaces around
// hex tokens are synthetic and must not survive, the spaces between text
// tokens are payload.
func Encode(readable string) []byte {
	parts := strings.Split(readable, " ")
	out := make([]byte, 0, len(readable))
	for i, part := range parts {
		if IsBinaryToken(part) {
			out = append(out, tokenByte(part))
		} else {
			out = append(out, part...)
		}
		if i+1 < len(parts) && !IsBinaryToken(part) && !IsBinaryToken(parts[i+1]) {
			out = append(out, ' ')
		}
	}
	return out
}

// IsBinaryToken reports whether tok is a hex byte token: 0x followed by one
// or two hex digits. An odd-length token like 0xa is accepted and decodes as
// if zero-padded to 0x0a.
func IsBinaryToken(tok string) bool {
	if len(tok) < 3 || len(tok) > 4 {
		return false
	}
	if tok[0] != '0' || tok[1] != 'x' {
		return false
	}
	for i := 2; i < len(tok); i++ {
		if !isHexDigit(tok[i]) {
			return false
		}
	}
	return true
}

func tokenByte(tok string) byte {
	var v byte
	for i := 2; i < len(tok); i++ {
		v = v<<4 | hexValue(tok[i])
	}
	return v
}

func isReadable(c byte) bool {
	if c == '\t' || c == '\n' || c == '\r' {
		return true
	}
	return c >= 0x20 && c <= 0x7e
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
