// Package encoding provides the text escaping and normalization helpers used
// when serializing element trees and when hashing their content.
package encoding

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// EscapeXML escapes special characters for XML content.
// Uses the standard library's xml.EscapeText for proper escaping.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// EscapeXMLText escapes only the basic XML entities for text content.
// This is a lighter-weight alternative to EscapeXML that keeps whitespace
// characters intact, which w:t content relies on.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in double-quoted XML attributes.
// Tabs and newlines are written as character references so they survive
// attribute-value normalization on the way back in.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "\t", "&#x9;")
	s = strings.ReplaceAll(s, "\n", "&#xA;")
	s = strings.ReplaceAll(s, "\r", "&#xD;")
	return s
}

// Space characters that are conflated with U+0020 when comparing text.
const (
	NoBreakSpace       = '\u00a0'
	NarrowNoBreakSpace = '\u202f'
	FigureSpace        = '\u2007'
)

// IsConflatableSpace reports whether r is a breaking or non-breaking space.
func IsConflatableSpace(r rune) bool {
	switch r {
	case ' ', NoBreakSpace, NarrowNoBreakSpace, FigureSpace:
		return true
	}
	return false
}

// ConflateSpaces replaces every non-breaking space variant with U+0020.
func ConflateSpaces(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r != ' ' && IsConflatableSpace(r) }) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if IsConflatableSpace(r) {
			return ' '
		}
		return r
	}, s)
}
