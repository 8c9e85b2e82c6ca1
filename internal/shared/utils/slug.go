package utils

import (
	"strconv"
	"strings"
)

// GenerateSlug builds the URL slug of a movie from its title and release year.
//
//	"Dalmations 101!", 2024
//	→ strip      "Dalmations 101"
//	→ lowercase  "dalmations 101"
//	→ hyphenate  "dalmations-101"
//	→ year       "dalmations-101-2024"
func GenerateSlug(title string, year int) string {
	// Step 1: keep only ASCII letters, digits, space, underscore, hyphen
	var b strings.Builder
	b.Grow(len(title) + 5)
	for i := 0; i < len(title); i++ {
		if isSlugByte(title[i]) {
			b.WriteByte(title[i])
		}
	}

	// Step 2: lowercase
	lower := strings.ToLower(b.String())

	// Step 3: spaces → hyphens
	hyphenated := strings.ReplaceAll(lower, " ", "-")

	// Step 4: append year
	return hyphenated + "-" + strconv.Itoa(year)
}

func isSlugByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ' ', c == '_', c == '-':
		return true
	}
	return false
}
