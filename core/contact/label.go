// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contact

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// DisplayLabel generates the human readable label for c. A custom label wins;
// otherwise the name fields are joined in the given order, falling back to
// details that are not part of the name.
func DisplayLabel(c Contact, order DisplayLabelOrder) string {
	if c.Name.CustomLabel != "" {
		return c.Name.CustomLabel
	}

	first, last := c.Name.First, c.Name.Last
	if order == LastNameFirst {
		first, last = last, first
	}
	var parts []string
	for _, p := range []string{first, last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return NonNameDisplayLabel(c)
}

// NonNameDisplayLabel generates a label only from details that are not part
// of the name.
func NonNameDisplayLabel(c Contact) string {
	if c.Nickname != "" {
		return c.Nickname
	}
	if c.Organization != "" {
		return c.Organization
	}
	for _, details := range [][]string{c.EmailAddresses, c.PhoneNumbers, c.OnlineAccounts} {
		for _, d := range details {
			if d = strings.TrimSpace(d); d != "" {
				return d
			}
		}
	}
	return ""
}

// NormalizePhoneNumber reduces a phone number to the form used as the phone
// index key: full width digits are folded, a leading '+' is kept and every
// other non-digit is dropped.
func NormalizePhoneNumber(number string) string {
	folded := width.Fold.String(strings.TrimSpace(number))
	var b strings.Builder
	for i, r := range folded {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	if b.String() == "+" {
		return ""
	}
	return b.String()
}
