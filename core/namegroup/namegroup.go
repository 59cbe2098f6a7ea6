// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package namegroup classifies contacts into the letter buckets used for
// grouped navigation, and counts the members of each bucket.
package namegroup

import (
	"unicode"
	"unicode/utf8"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// Other is the catch-all bucket for contacts whose label does not start with
// a letter of the bucket alphabet.
const Other = "#"

var groups = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"Å", "Ä", "Ö",
	Other,
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(groups))
	for _, g := range groups {
		m[g] = true
	}
	return m
}()

// Groups returns all buckets in display order.
func Groups() []string {
	out := make([]string, len(groups))
	copy(out, groups)
	return out
}

// IsGroup reports whether g is one of the buckets.
func IsGroup(g string) bool {
	return known[g]
}

// Classify returns the bucket for c. The leading name field for the order is
// used first, then the other name field, then label. Names outside Latin-1
// fall back to a label built from non-name details, which is more likely to
// map to the alphabet.
func Classify(c contact.Contact, label string, order contact.DisplayLabelOrder) string {
	first, last := c.Name.First, c.Name.Last
	if order == contact.LastNameFirst {
		first, last = last, first
	}

	var group rune
	switch {
	case first != "":
		group = leading(first)
	case last != "":
		group = leading(last)
	case label != "":
		group = leading(label)
	}

	if group > unicode.MaxLatin1 {
		if alt := contact.NonNameDisplayLabel(c); alt != "" {
			group = leading(alt)
		}
	}

	if group == 0 || !known[string(group)] {
		return Other
	}
	return string(group)
}

func leading(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return unicode.ToUpper(r)
}
