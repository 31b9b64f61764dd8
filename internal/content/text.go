// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content classifies file bytes: text versus binary, decoding, and
// semantic emptiness.
package content

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// IsText reports whether blob should be rendered as text: empty content, or
// valid UTF-8 without NUL bytes.
func IsText(blob []byte) bool {
	if len(blob) == 0 {
		return true
	}
	if bytes.IndexByte(blob, 0) >= 0 {
		return false
	}
	return utf8.Valid(blob)
}

// Decode returns blob as a string, decoding it as ISO-8859-1 when it is not
// valid UTF-8. Every byte sequence decodes.
func Decode(blob []byte) string {
	if utf8.Valid(blob) {
		return string(blob)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(blob)
	if err != nil {
		return string(blob)
	}
	return string(out)
}
