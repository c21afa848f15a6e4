// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize canonicalizes identity fields before they are compared
// or stored.
//
// # Usage
//
// Email addresses and mobile numbers are unique keys. Two spellings of the
// same address ("Admin@Example.com" and "admin@example.com ") must resolve
// to one account, so every write and lookup passes through this package.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Email trims, composes (NFC) and lower-cases an address.
func Email(s string) string {
	composed, _, _ := transform.String(norm.NFC, strings.TrimSpace(s))
	return lower.String(composed)
}

// Mobile keeps only the digits and a leading '+' of a phone number.
//
// # Example
//
//	normalize.Mobile(" +84 (90) 123-4567 ") // "+84901234567"
func Mobile(s string) string {
	s = strings.TrimSpace(s)

	var builder strings.Builder
	for i, r := range s {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Name composes a display name and collapses runs of whitespace.
func Name(s string) string {
	composed, _, _ := transform.String(norm.NFC, s)
	return strings.Join(strings.Fields(composed), " ")
}

// FullName joins first and last names, skipping empty parts.
func FullName(first, last string) string {
	return Name(first + " " + last)
}
