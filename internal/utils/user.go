package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegexp   = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	passwordDigit = regexp.MustCompile(`\d`)
	passwordLower = regexp.MustCompile(`[a-z]`)
	passwordUpper = regexp.MustCompile(`[A-Z]`)
	usernameStrip = regexp.MustCompile(`[^a-z0-9_.]`)
	profileStyles = []string{"notionists-neutral", "adventurer-neutral", "fun-emoji"}
	profileSeeds  = []string{"Garfield", "Tinkerbell", "Annie", "Loki", "Cleo", "Angel", "Bob", "Mia", "Coco", "Gracie", "Bear", "Bella", "Abby", "Harley", "Cali", "Leo", "Luna", "Jack", "Felix", "Kiki"}
)

func ValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// ValidPassword requires 6 to 20 characters with a digit, a lowercase and an
// uppercase letter.
func ValidPassword(password string) bool {
	if len(password) < 6 || len(password) > 20 {
		return false
	}
	return passwordDigit.MatchString(password) &&
		passwordLower.MatchString(password) &&
		passwordUpper.MatchString(password)
}

// UsernameFromEmail derives the handle from the local part of an address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	return usernameStrip.ReplaceAllString(local, "")
}

// DefaultProfileImg picks a random generated avatar for new accounts.
func DefaultProfileImg() string {
	style := profileStyles[RandomInt(len(profileStyles))]
	seed := profileSeeds[RandomInt(len(profileSeeds))]
	return "https://api.dicebear.com/6.x/" + style + "/svg?seed=" + seed
}
