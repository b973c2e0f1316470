// Package teamkey normalizes scraped team names into comparable keys so
// that expert predictions can be linked to coupon matches without a hard
// foreign key. "Arsenal FC", "arsenal" and "Arsenal." all map to the
// same key.
package teamkey

import (
	"regexp"
	"strings"
)

// Club suffixes that sources include inconsistently.
var clubSuffixes = []string{" fc", " if", " bk", " afc", " ff", " fk"}

var (
	nonAlphaNum = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the name, strips common club suffixes, removes
// non-alphanumeric characters and collapses whitespace. Two names refer
// to the same team for linking purposes iff their normalized keys are
// equal.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range clubSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = nonAlphaNum.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SamePairing reports whether the scraped home/away names refer to the
// given match pairing. Both sides must match exactly after normalization;
// a reversed pairing is not accepted.
func SamePairing(scrapedHome, scrapedAway, matchHome, matchAway string) bool {
	return Normalize(scrapedHome) == Normalize(matchHome) &&
		Normalize(scrapedAway) == Normalize(matchAway)
}
