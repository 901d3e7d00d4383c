package counsel

import (
	"regexp"
	"strings"
)

var (
	matchPunctRe     = regexp.MustCompile(`[,.]`)
	trailingSuffixRe = regexp.MustCompile(`(?:\s+(?:llp|llc|pllc|pc|pa))+$`)
)

// normalizeForMatching lower-cases, drops commas and dots, collapses whitespace and
// writes "and" as "&".
func normalizeForMatching(name string) string {
	n := matchPunctRe.ReplaceAllString(strings.ToLower(name), "")
	n = whitespaceRe.ReplaceAllString(n, " ")
	n = strings.ReplaceAll(n, " and ", " & ")
	return strings.TrimSpace(n)
}

// firmBase is the matching form of a firm without its entity suffix.
func firmBase(name string) string {
	n := normalizeForMatching(name)
	n = strings.TrimPrefix(n, "the ")
	return strings.TrimSpace(trailingSuffixRe.ReplaceAllString(n, ""))
}

// FirmsMatch is the single firm-identity test: two names match when their bases
// (suffix stripped, lower-cased, punctuation normalised) are equal, or when one base
// appears in the other on word boundaries ("Gibson Dunn" vs "Gibson, Dunn & Crutcher LLP").
func FirmsMatch(a, b string) bool {
	ka, kb := firmBase(a), firmBase(b)
	if ka == "" || kb == "" {
		return false
	}
	if ka == kb {
		return true
	}
	if len(ka) > len(kb) {
		ka, kb = kb, ka
	}
	return len(ka) >= 4 && containsWholePhrase(kb, ka)
}
