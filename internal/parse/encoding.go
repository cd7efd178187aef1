// Package parse holds helpers shared by the grammar parsers.
package parse

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeLegacy converts Windows-1252 input to UTF-8. The legacy system
// writes its exports in the OS code page; valid UTF-8 passes through
// unchanged so re-encoded files are not double-decoded.
func DecodeLegacy(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return data
	}
	return decoded
}
