// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns emitted files into output records and writes them to
// a sink.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Formatter renders one record per emitted file.
type Formatter interface {
	// Header renders a path with no body.
	Header(p string) string
	// Body renders a path together with its text.
	Body(p, text string) string
	// Binary renders a marker for a file whose bytes are not text.
	Binary(p string) string
}

const (
	TagXML      = "xml"
	TagMarkdown = "md"
)

// Tags returns the supported formatter tags.
func Tags() []string {
	return []string{TagXML, TagMarkdown}
}

// ForTag returns the formatter registered under tag.
func ForTag(tag string) (Formatter, error) {
	switch tag {
	case TagXML:
		return XML{}, nil
	case TagMarkdown:
		return Markdown{}, nil
	default:
		return nil, fmt.Errorf("unknown output tag %q (supported: %s)", tag, strings.Join(Tags(), ", "))
	}
}

// XML wraps each file in a tag named after its path.
type XML struct{}

func (XML) Header(p string) string {
	return "<" + p + ">\n</" + p + ">\n"
}

func (XML) Body(p, text string) string {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return "<" + p + ">\n" + text + "</" + p + ">\n"
}

func (XML) Binary(p string) string {
	return "<" + p + "/>\n"
}

// Markdown renders each file under a "# FILE:" heading followed by a
// separator rule.
type Markdown struct{}

func (Markdown) Header(p string) string {
	return heading(p) + "\n---\n"
}

func (Markdown) Body(p, text string) string {
	return heading(p) + text + "\n\n---\n"
}

func (m Markdown) Binary(p string) string {
	return m.Header(p)
}

// heading is the "# FILE:" line and its rule, sized in characters.
func heading(p string) string {
	return "# FILE: " + p + "\n" + strings.Repeat("=", utf8.RuneCountInString(p)+8) + "\n"
}
