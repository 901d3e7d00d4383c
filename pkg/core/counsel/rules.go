package counsel

import (
	"regexp"
	"strings"
)

// Rule is one independent extraction pattern. Rules are stateless; the engine unions
// their output.
type Rule interface {
	Name() string
	Extract(text, company string) []RawCandidate
}

const (
	personPattern   = `[A-Z][a-z]+(?:\s+[A-Z]\.?)?\s+[A-Z][a-z]+`
	nameLinePattern = personPattern + `(?:\s+(?:Jr\.|Sr\.|II|III|IV))?`
	credential      = `(?:Esq\.|P\.C\.)`
	firmLine        = `[A-Z][^\n]{5,60}?` + suffixPattern
	personList      = personPattern + `(?:(?:\s+and\s+|,\s*(?:and\s+)?)` + personPattern + `)*`
)

var (
	nameBlockRe    = regexp.MustCompile(`((?:` + nameLinePattern + `,?\s*` + credential + `\s*\n)+)\s*(` + firmLine + `)`)
	nameLineOnlyRe = regexp.MustCompile(`^(` + nameLinePattern + `)`)
	namesOfFirmRe  = regexp.MustCompile(`(` + personList + `)\s+of\s+(` + firmLine + `)`)
	nameListSplit  = regexp.MustCompile(`\s+and\s+|,\s*(?:and\s+)?`)
	nameLineRe     = regexp.MustCompile(`(` + nameLinePattern + `)(?:,?\s*` + credential + `)?\s*\n\s*(` + firmLine + `)`)
	copiesToRe     = regexp.MustCompile(`(?m)(?:Copies to:|Copy to:)\s*\n((?:.*\n)+?)([A-Z][^\n,]{5,60}?` + suffixPattern + `(?:[^\n]{0,20})?$)`)
	copiesNameRe   = regexp.MustCompile(`^(` + personPattern + `)(?:,?\s*` + credential + `)?`)
	firmishLineRe  = regexp.MustCompile(`(?:LLP|LLC|P\.A\.)(?:\s|$)`)
	signatureRe    = regexp.MustCompile(`By:\s*(` + personPattern + `)(?:,?\s*` + credential + `)?\s*\n\s*(` + firmLine + `)`)
	narrativeRe    = regexp.MustCompile(`(?:[Rr]epresented|[Pp]assed\s+upon|[Aa]dvised)\s+(?:for\s+[^\n]{1,60}?\s+)?by\s+(?:(` + personList + `)\s*,?\s+of\s+)?(?:the\s+law\s+firm\s+of\s+)?([A-Z][^\n;()]{3,60}?` + suffixPattern + `)`)
	legalMattersRe = regexp.MustCompile(`(?i)legal\s+matters`)
	bareFirmRe     = regexp.MustCompile(`\b([A-Z][A-Za-z'\-]*(?:,?[ \t]+(?:&|and|[A-Z][A-Za-z'\-.]*))*,?[ \t]+` + suffixPattern + `)`)
)

// DefaultRules are the name-bearing rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		nameBlockRule{},
		namesOfFirmRule{},
		nameLineRule{},
		copiesToRule{},
		signatureRule{},
		narrativeRule{},
	}
}

// FallbackRules run, in order, only while nothing has been found.
func FallbackRules() []Rule {
	return []Rule{
		legalMattersFirmRule{},
		referenceRule{},
	}
}

func window(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// nameBlockRule: consecutive "Name, Esq." lines followed by a firm line.
type nameBlockRule struct{}

func (nameBlockRule) Name() string { return "name_block" }

func (r nameBlockRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, m := range nameBlockRe.FindAllStringSubmatchIndex(text, -1) {
		block := text[m[2]:m[3]]
		firm := text[m[4]:m[5]]
		ctx := window(text, m[0], m[1]+150)
		for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
			nm := nameLineOnlyRe.FindStringSubmatch(strings.TrimSpace(line))
			if nm == nil {
				continue
			}
			out = append(out, RawCandidate{Lawyer: nm[1], Firm: firm, Context: ctx, Rule: r.Name()})
		}
	}
	return out
}

// namesOfFirmRule: "Jane Doe and John Roe of Cooley LLP".
type namesOfFirmRule struct{}

func (namesOfFirmRule) Name() string { return "names_of_firm" }

func (r namesOfFirmRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, m := range namesOfFirmRe.FindAllStringSubmatchIndex(text, -1) {
		names := text[m[2]:m[3]]
		firm := text[m[4]:m[5]]
		ctx := window(text, m[0]-100, m[1]+100)
		for _, n := range nameListSplit.Split(names, -1) {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, RawCandidate{Lawyer: n, Firm: firm, Context: ctx, Rule: r.Name()})
			}
		}
	}
	return out
}

// nameLineRule: a name line, optionally with a credential, directly above a firm line.
type nameLineRule struct{}

func (nameLineRule) Name() string { return "name_line" }

func (r nameLineRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, m := range nameLineRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, RawCandidate{
			Lawyer:  text[m[2]:m[3]],
			Firm:    text[m[4]:m[5]],
			Context: window(text, m[0], m[1]+100),
			Rule:    r.Name(),
		})
	}
	return out
}

// copiesToRule: the cover-page "Copies to:" block. Each line is a candidate on its own;
// lines that are themselves firms are skipped. ", P.C." after a name is a credential.
type copiesToRule struct{}

func (copiesToRule) Name() string { return "copies_to" }

func (r copiesToRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, m := range copiesToRe.FindAllStringSubmatchIndex(text, -1) {
		section := text[m[2]:m[3]]
		firm := text[m[4]:m[5]]
		ctx := window(text, m[0], m[1]+200)
		for _, line := range strings.Split(strings.TrimSpace(section), "\n") {
			line = strings.TrimSpace(line)
			if len(line) < 5 || looksLikeFirmLine(line) {
				continue
			}
			nm := copiesNameRe.FindStringSubmatch(line)
			if nm == nil {
				continue
			}
			out = append(out, RawCandidate{Lawyer: nm[1], Firm: firm, Context: ctx, Rule: r.Name()})
		}
	}
	return out
}

// looksLikeFirmLine reports an LLP/LLC/P.A. token not introduced by ", ".
func looksLikeFirmLine(line string) bool {
	for _, loc := range firmishLineRe.FindAllStringIndex(line, -1) {
		if loc[0] < 2 || line[loc[0]-2:loc[0]] != ", " {
			return true
		}
	}
	return false
}

// signatureRule: "By: Name" signature line followed by the firm.
type signatureRule struct{}

func (signatureRule) Name() string { return "signature" }

func (r signatureRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, m := range signatureRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, RawCandidate{
			Lawyer:  text[m[2]:m[3]],
			Firm:    text[m[4]:m[5]],
			Context: window(text, m[0], m[1]+100),
			Rule:    r.Name(),
		})
	}
	return out
}

// narrativeRule: "represented by", "passed upon for us by", "advised by", naming people
// ("by Jane Doe of Cooley LLP") or only the firm ("by Cooley LLP").
type narrativeRule struct{}

func (narrativeRule) Name() string { return "narrative" }

func (r narrativeRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, m := range narrativeRe.FindAllStringSubmatchIndex(text, -1) {
		firm := text[m[4]:m[5]]
		// "Jane Doe, Esq., of Cooley LLP" falls through the name list into the firm group.
		if i := strings.LastIndex(firm, " of "); i >= 0 {
			firm = firm[i+len(" of "):]
		}
		ctx := window(text, m[0]-100, m[1]+100)
		if m[2] < 0 {
			out = append(out, RawCandidate{Firm: firm, Context: ctx, Rule: r.Name()})
			continue
		}
		for _, n := range nameListSplit.Split(text[m[2]:m[3]], -1) {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, RawCandidate{Lawyer: n, Firm: firm, Context: ctx, Rule: r.Name()})
			}
		}
	}
	return out
}

// legalMattersFirmRule: the first plausible firm within 500 characters after a
// "legal matters" heading, recorded without a lawyer.
type legalMattersFirmRule struct{}

func (legalMattersFirmRule) Name() string { return "legal_matters_firm" }

const legalMattersSpan = 500

func (r legalMattersFirmRule) Extract(text, company string) []RawCandidate {
	for _, a := range legalMattersRe.FindAllStringIndex(text, -1) {
		span := window(text, a[1], a[1]+legalMattersSpan)
		for _, fm := range bareFirmRe.FindAllStringSubmatch(span, -1) {
			firm := CleanFirmName(fm[1])
			if len(firm) <= 10 || !IsValidFirmName(firm, company) {
				continue
			}
			return []RawCandidate{{Firm: firm, Context: span, Rule: r.Name()}}
		}
	}
	return nil
}

// referenceRule: well-known firms named anywhere in the text.
type referenceRule struct{}

func (referenceRule) Name() string { return "reference" }

func (r referenceRule) Extract(text, company string) []RawCandidate {
	var out []RawCandidate
	for _, firm := range FindReferenceFirms(text) {
		// Some reference entries carry no suffix ("Jones Day").
		out = append(out, RawCandidate{Firm: NormalizeFirmName(firm), Rule: r.Name()})
	}
	return out
}
