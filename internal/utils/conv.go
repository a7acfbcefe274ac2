package utils

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

const letterBytes = "abcdefghijklmnopqrstuvwxyz0123456789"

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func RandomInt(n int) int {
	return rand.IntN(n)
}

// RandomString returns n lowercase alphanumerics.
func RandomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.IntN(len(letterBytes))]
	}
	return string(b)
}

// Slugify lowercases title and joins its words with dashes.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.TrimRight(s[:80], "-")
	}
	return s
}
