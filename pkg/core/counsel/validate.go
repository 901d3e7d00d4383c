// Package counsel extracts external law firms and their lawyers from filing text.
//
// Every candidate, whether produced by a pattern rule or by a language model, passes
// through the validators in this file before it is accepted.
package counsel

import (
	"regexp"
	"strings"
	"unicode"
)

// FirmSuffixes are the entity suffixes a normalized firm name always ends with.
var FirmSuffixes = []string{"LLP", "LLC", "PLLC", "P.C.", "P.A."}

const suffixPattern = `(?:LLP|LLC|PLLC|P\.C\.|P\.A\.)`

// InternalTitleWindow is how far after a name the in-house title check looks.
const InternalTitleWindow = 100

var (
	// Word boundaries on both sides except after the trailing dot of P.C. / P.A.
	firmSuffixRe = regexp.MustCompile(`\b(?:LLP|LLC|PLLC)\b|\bP\.[CA]\.`)

	firmPrefixRe      = regexp.MustCompile(`(?i)^\s*(?:exhibit\s+[\d.]+\s*[-:]?|opinion\s+of|opinion|registration\s+of)(?:\s+|$)`)
	anySuffixRe       = regexp.MustCompile(`(?i)\b(?:llp|llc|pllc|p\.[ca])\b`)
	suffixOnlyRe      = regexp.MustCompile(`^` + suffixPattern + `$`)
	trailingAndRe     = regexp.MustCompile(`(?i)(?:^|[\s,]+)(?:&|and)$`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
	trailingPunctRe   = regexp.MustCompile(`[\s.,;:]+$`)
	doubledSuffixRe   = regexp.MustCompile(`(?i)\b` + suffixPattern + `(?:[\s.,]*\b` + suffixPattern + `)+`)
	suffixTokenRe     = regexp.MustCompile(`(?i)` + suffixPattern)
	andRe             = regexp.MustCompile(`(?i)\s+and\s+`)
	digitRe           = regexp.MustCompile(`\d`)
	esqRe             = regexp.MustCompile(`(?i),?\s*\bEsq\b\.?`)
	pcCredentialRe    = regexp.MustCompile(`(?i),?\s*\bP\.C\b\.?`)
	honorificRe       = regexp.MustCompile(`^(?:Mr|Ms|Mrs|Dr)\.\s+`)
	personCharsRe     = regexp.MustCompile(`^[A-Za-z.'\-\s]+$`)
	genSuffixRe       = regexp.MustCompile(`^(?:Jr\.?|Sr\.?|II|III|IV)$`)
	accountingFirmRes = []*regexp.Regexp{
		regexp.MustCompile(`\bdeloitte\b`),
		regexp.MustCompile(`\bpwc\b`),
		regexp.MustCompile(`\bpricewaterhousecoopers\b`),
		regexp.MustCompile(`\bernst\s*&\s*young\b`),
		regexp.MustCompile(`\bkpmg\b`),
		regexp.MustCompile(`\bey\b`),
	}
)

var firmMetadataTokens = []string{
	"opinion", "date filed", "filed", "dated", "registration statement",
	"statement on", "form", "exhibit", "signature", "address", "street",
	"suite", "city", "state", "zip", "telephone", "tel.", "fax", "email",
	"attention", "re:", "subject",
}

var placeholderFirms = []string{"law_firms", "lawyers", "law firm", "example", "firm name", "another"}

var investmentBanks = []string{
	"goldman sachs", "morgan stanley", "jp morgan", "jpmorgan",
	"credit suisse", "ubs", "deutsche bank", "barclays",
	"cantor fitzgerald", "oppenheimer", "jefferies", "cowen",
	"stifel", "piper sandler", "raymond james", "roth capital",
	"needham", "wedbush", "craig-hallum", "btig", "maxim group",
}

var operatingCompanyWords = []string{"fund", "capital", "ventures", "holdings", "trust company"}

var personTitlePhrases = []string{
	"legal officer", "chief legal", "general counsel", "corporate counsel",
	"secretary", "president", "vice president", "chief executive",
	"ceo", "cfo", "clo", "officer", "director", "manager",
	"associate", "partner", "attorney", "lawyer", "counsel",
	"corporation", "company", "inc", "llc", "llp", "limited",
	"the registrant", "the company", "issuer",
	"chief financial", "financial officer", "date filed",
	"registration statement", "signature", "address", "dated",
}

var personInvalidWords = map[string]bool{
	"chief": true, "financial": true, "officer": true, "filed": true, "date": true, "amended": true,
	"registration": true, "statement": true, "signature": true, "address": true, "dated": true,
	"street": true, "suite": true, "city": true, "state": true, "zip": true, "telephone": true,
	"fax": true, "email": true,
}

// Two-token place names that otherwise look like a person on a line of their own.
var cityPhrases = []string{
	"new york", "san francisco", "los angeles", "palo alto", "menlo park",
	"redwood city", "mountain view", "san diego", "san jose", "santa clara",
	"santa monica", "salt lake", "las vegas", "new jersey", "hong kong",
	"north carolina", "south carolina", "kansas city", "fort worth", "st. louis",
	"washington d.c.", "boca raton",
}

var internalTitles = []string{
	"general counsel", "chief legal officer", "clo",
	"corporate counsel", "secretary", "corporate secretary",
	"in-house counsel", "legal counsel", "vice president",
	"senior counsel", "associate general counsel", "president",
	"chief executive", "ceo", "cfo",
}

var companyStopWords = map[string]bool{"the": true, "inc": true, "corp": true, "company": true, "group": true, "holdings": true}

// CleanFirmName strips boilerplate prefixes and trailing fragments, collapses
// whitespace and doubled suffixes ("LLP LLP").
func CleanFirmName(firm string) string {
	firm = strings.TrimSpace(firm)
	for {
		stripped := firmPrefixRe.ReplaceAllString(firm, "")
		if stripped == firm {
			break
		}
		firm = stripped
	}
	firm = whitespaceRe.ReplaceAllString(firm, " ")
	firm = anySuffixRe.ReplaceAllStringFunc(firm, strings.ToUpper)

	firm = doubledSuffixRe.ReplaceAllStringFunc(firm, collapseSuffixRun)

	// Drop anything after the last suffix (", Palo Alto, California").
	if locs := firmSuffixRe.FindAllStringIndex(firm, -1); len(locs) > 0 {
		firm = firm[:locs[len(locs)-1][1]]
	}

	firm = trailingPunctRe.ReplaceAllString(firm, "")
	if hasDotlessSuffix(firm) {
		firm += "."
	}
	return strings.TrimSpace(firm)
}

// collapseSuffixRun keeps the first suffix of a run when every token in it is the same.
func collapseSuffixRun(run string) string {
	tokens := suffixTokenRe.FindAllString(run, -1)
	for _, t := range tokens[1:] {
		if !strings.EqualFold(t, tokens[0]) {
			return run
		}
	}
	return tokens[0]
}

// hasDotlessSuffix reports a "P.C" / "P.A" whose closing dot was trimmed as punctuation.
func hasDotlessSuffix(firm string) bool {
	return strings.HasSuffix(firm, " P.C") || strings.HasSuffix(firm, " P.A") ||
		strings.HasSuffix(firm, ",P.C") || strings.HasSuffix(firm, ",P.A")
}

// IsNotLawFirm rejects names that are plainly something else: boilerplate, placeholders,
// the filer itself, auditors, underwriters and operating-company LLCs.
func IsNotLawFirm(firm, company string) bool {
	lower := strings.ToLower(firm)

	if strings.HasPrefix(lower, "opinion of") || strings.HasPrefix(lower, "opinion ") {
		return true
	}
	for _, g := range placeholderFirms {
		if strings.Contains(lower, g) {
			return true
		}
	}

	if company != "" {
		companyLower := strings.ToLower(strings.TrimSpace(company))
		if companyLower != "" && strings.Contains(lower, companyLower) {
			return true
		}
		// A one-word firm named after the filer ("Acme LLP" for "Acme Therapeutics, Inc.").
		if lead := leadingSignificantWord(companyLower); lead != "" && !strings.Contains(firmBase(firm), " ") && FirmsMatch(firm, lead) {
			return true
		}
	}

	if isAuditor(lower) {
		return true
	}
	for _, bank := range investmentBanks {
		if strings.Contains(lower, bank) {
			return true
		}
	}

	hasLLP := strings.Contains(lower, "llp")
	if strings.Contains(lower, "& co") && !hasLLP {
		return true
	}
	if strings.Contains(lower, "llc") && !hasLLP {
		for _, w := range operatingCompanyWords {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}

func isAuditor(lower string) bool {
	for _, re := range accountingFirmRes {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsValidFirmName reports whether a cleaned firm name can be accepted.
func IsValidFirmName(firm, company string) bool {
	if firm == "" {
		return false
	}
	if IsNotLawFirm(firm, company) {
		return false
	}
	if !firmSuffixRe.MatchString(firm) {
		return false
	}
	if digitRe.MatchString(firm) {
		return false
	}

	lower := strings.ToLower(firm)
	for _, tok := range firmMetadataTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	return len(strings.Fields(firm)) <= 8
}

// NormalizeFirmName cleans the name, writes "and" as "&" and appends LLP when no
// recognised suffix ends the name. Names that are only boilerplate or only a suffix
// normalize to "". Idempotent.
func NormalizeFirmName(firm string) string {
	firm = CleanFirmName(firm)
	firm = andRe.ReplaceAllString(firm, " & ")
	for {
		trimmed := trailingAndRe.ReplaceAllString(firm, "")
		if trimmed == firm {
			break
		}
		firm = CleanFirmName(trimmed)
	}
	firm = strings.TrimSpace(whitespaceRe.ReplaceAllString(firm, " "))
	if firm == "" || suffixOnlyRe.MatchString(firm) {
		return ""
	}
	if !endsWithSuffix(firm) {
		firm += " LLP"
	}
	return firm
}

func endsWithSuffix(firm string) bool {
	for _, s := range FirmSuffixes {
		if strings.HasSuffix(firm, s) {
			return true
		}
	}
	return false
}

// NormalizeLawyerName strips credentials and honorifics and collapses whitespace.
func NormalizeLawyerName(name string) string {
	name = strings.TrimSpace(name)
	name = esqRe.ReplaceAllString(name, "")
	name = pcCredentialRe.ReplaceAllString(name, "")
	name = honorificRe.ReplaceAllString(strings.TrimSpace(name), "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.Trim(strings.TrimSpace(name), ",")
}

// IsValidPersonName reports whether name looks like a person rather than a title,
// place or company fragment.
func IsValidPersonName(name, company string) bool {
	lower := strings.ToLower(name)
	words := strings.Fields(name)

	if company != "" {
		companyWords := make(map[string]bool)
		for _, w := range strings.Fields(strings.ToLower(company)) {
			companyWords[strings.Trim(w, `.,'"()`)] = true
		}
		for _, w := range strings.Fields(lower) {
			if len(w) > 4 && companyWords[w] {
				return false
			}
		}
	}

	if isAuditor(lower) {
		return false
	}
	for _, bank := range investmentBanks {
		if containsWholePhrase(lower, bank) {
			return false
		}
	}

	for _, p := range personTitlePhrases {
		if containsPhrase(lower, p) {
			return false
		}
	}
	for _, p := range cityPhrases {
		if containsWholePhrase(lower, p) {
			return false
		}
	}

	if digitRe.MatchString(name) {
		return false
	}
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if personInvalidWords[strings.ToLower(strings.Trim(w, `.,"'`))] {
			return false
		}
	}
	if !personCharsRe.MatchString(name) {
		return false
	}

	hasLongWord := false
	for _, w := range words {
		r := []rune(w)
		if len(r) > 1 && !unicode.IsUpper(r[0]) {
			return false
		}
		if len(r) > 3 {
			hasLongWord = true
		}
	}
	if !hasLongWord {
		return false
	}

	if len(strings.TrimRight(surname(words), ".")) < 2 {
		return false
	}

	return !strings.HasPrefix(lower, "by ") && !strings.HasPrefix(lower, "for ")
}

// surname is the last token that is not a generational suffix.
func surname(words []string) string {
	for i := len(words) - 1; i >= 0; i-- {
		if !genSuffixRe.MatchString(words[i]) {
			return words[i]
		}
	}
	return ""
}

// IsInternalEmployee reports whether an in-house title follows the first occurrence
// of name in context within InternalTitleWindow bytes.
func IsInternalEmployee(name, context string) bool {
	idx := strings.Index(context, name)
	if idx == -1 {
		return false
	}
	end := idx + InternalTitleWindow
	if end > len(context) {
		end = len(context)
	}
	after := strings.ToLower(context[idx:end])
	for _, t := range internalTitles {
		if containsPhrase(after, t) {
			return true
		}
	}
	return false
}

// LawyerKey reduces a name to "first last" in lower case, ignoring credentials,
// honorifics and middle names. "Michelle A. Wong" and "Michelle Wong" share a key.
func LawyerKey(name string) string {
	parts := strings.Fields(strings.ToLower(NormalizeLawyerName(name)))
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + " " + parts[len(parts)-1]
	}
}

func leadingSignificantWord(companyLower string) string {
	for _, w := range strings.Fields(companyLower) {
		w = strings.Trim(w, `.,'"()`)
		if len(w) >= 4 && !companyStopWords[w] {
			return w
		}
	}
	return ""
}

// containsPhrase matches short phrases as whole words so "inc" does not reject "Vincent"
// while longer ones keep plain substring matching.
func containsPhrase(lower, phrase string) bool {
	if len(phrase) > 4 {
		return strings.Contains(lower, phrase)
	}
	return containsWholePhrase(lower, phrase)
}

func containsWholePhrase(lower, phrase string) bool {
	for idx := 0; ; {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		if (start == 0 || !isLetter(lower[start-1])) && (end == len(lower) || !isLetter(lower[end])) {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
