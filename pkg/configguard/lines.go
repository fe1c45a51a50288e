// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// line is one significant physical line of a spec file
type line struct {
	indent  int
	content string
}

// scanLines yields every non-blank, non-comment line of text in file order.
// The indent is the number of leading whitespace characters.
func scanLines(text string) iter.Seq[line] {
	return func(yield func(line) bool) {
		for raw := range strings.SplitSeq(text, "\n") {
			content := strings.TrimSpace(raw)
			if content == "" || strings.HasPrefix(content, "#") {
				continue
			}
			lead := raw[:len(raw)-len(strings.TrimLeftFunc(raw, unicode.IsSpace))]
			indent := utf8.RuneCountInString(lead)
			if !yield(line{indent: indent, content: content}) {
				return
			}
		}
	}
}

// splitPair splits "key: value" at the first colon
func splitPair(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
