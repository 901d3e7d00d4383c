package counsel

import "strings"

// MajorLawFirms is a curated list of large U.S. and international firms used as a
// last-resort scan when no pattern found anything.
var MajorLawFirms = []string{
	"Kirkland & Ellis LLP",
	"Latham & Watkins LLP",
	"DLA Piper LLP",
	"Baker McKenzie LLP",
	"Skadden, Arps, Slate, Meagher & Flom LLP",
	"Sidley Austin LLP",
	"Morgan, Lewis & Bockius LLP",
	"White & Case LLP",
	"Cooley LLP",
	"Ropes & Gray LLP",
	"WilmerHale LLP",
	"Goodwin Procter LLP",
	"Gibson, Dunn & Crutcher LLP",
	"Gibson Dunn & Crutcher LLP",
	"Paul, Weiss, Rifkind, Wharton & Garrison LLP",
	"Sullivan & Cromwell LLP",
	"Davis Polk & Wardwell LLP",
	"Cravath, Swaine & Moore LLP",
	"Wachtell, Lipton, Rosen & Katz",
	"Simpson Thacher & Bartlett LLP",
	"Cleary Gottlieb Steen & Hamilton LLP",
	"Debevoise & Plimpton LLP",
	"Shearman & Sterling LLP",
	"Allen & Overy LLP",
	"Clifford Chance LLP",
	"Freshfields Bruckhaus Deringer LLP",
	"Linklaters LLP",
	"Slaughter and May",

	// Technology and venture
	"Wilson Sonsini Goodrich & Rosati P.C.",
	"Wilson Sonsini Goodrich & Rosati PC",
	"Fenwick & West LLP",
	"Gunderson Dettmer Stough Villeneuve Franklin & Hachigian LLP",
	"Orrick, Herrington & Sutcliffe LLP",
	"Morrison & Foerster LLP",
	"Perkins Coie LLP",

	// Corporate and M&A
	"Weil, Gotshal & Manges LLP",
	"Fried, Frank, Harris, Shriver & Jacobson LLP",
	"Willkie Farr & Gallagher LLP",
	"Paul Hastings LLP",
	"Milbank LLP",
	"Proskauer Rose LLP",
	"Schulte Roth & Zabel LLP",
	"Akin Gump Strauss Hauer & Feld LLP",

	// Life sciences
	"Covington & Burling LLP",
	"Hogan Lovells LLP",
	"Arnold & Porter Kaye Scholer LLP",

	// Finance
	"Cadwalader, Wickersham & Taft LLP",
	"Cahill Gordon & Reindel LLP",
	"Mayer Brown LLP",

	// Energy
	"Vinson & Elkins LLP",
	"Baker Botts LLP",
	"Bracewell LLP",
	"Andrews Kurth Kenyon LLP",

	// General corporate
	"Foley & Lardner LLP",
	"Greenberg Traurig LLP",
	"McDermott Will & Emery LLP",
	"K&L Gates LLP",
	"Norton Rose Fulbright LLP",
	"Bryan Cave Leighton Paisner LLP",
	"Reed Smith LLP",
	"Dechert LLP",
	"Hunton Andrews Kurth LLP",
	"O'Melveny & Myers LLP",
	"Quinn Emanuel Urquhart & Sullivan LLP",
	"King & Spalding LLP",
	"Alston & Bird LLP",
	"Jones Day",
	"Pillsbury Winthrop Shaw Pittman LLP",

	// Europe
	"Freshfields Bruckhaus Deringer",
	"Herbert Smith Freehills LLP",
	"Ashurst LLP",
	"Simmons & Simmons LLP",
	"Macfarlanes LLP",
	"Travers Smith LLP",
	"De Brauw Blackstone Westbroek N.V.",
	"De Brauw Blackstone Westbroek",
	"NautaDutilh N.V.",
	"Loyens & Loeff N.V.",

	// Canada
	"Osler, Hoskin & Harcourt LLP",
	"Blake, Cassels & Graydon LLP",
	"Davies Ward Phillips & Vineberg LLP",
	"Torys LLP",

	// Asia
	"Rajah & Tann LLP",
	"Allen & Gledhill LLP",
	"Kim & Chang",

	"Katten Muchin Rosenman LLP",
	"Stroock & Stroock & Lavan LLP",
	"Kramer Levin Naftalis & Frankel LLP",
	"Akerman LLP",
	"Ballard Spahr LLP",
	"Venable LLP",
	"Troutman Pepper Hamilton Sanders LLP",
	"Dentons LLP",
}

// FindReferenceFirms returns the reference firms mentioned in text, by case-insensitive
// substring or after punctuation normalisation. Spelling variants of one firm are
// reported once, first list entry wins.
func FindReferenceFirms(text string) []string {
	lowerText := strings.ToLower(text)
	normText := normalizeForMatching(text)

	var found []string
	for _, firm := range MajorLawFirms {
		if containsFirm(found, firm) {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(firm)) || strings.Contains(normText, normalizeForMatching(firm)) {
			found = append(found, firm)
		}
	}
	return found
}

// ResolveReferenceFirm returns the reference spelling of the one firm that matches name
// ("kirkland and ellis" -> "Kirkland & Ellis LLP", "Gibson Dunn" -> "Gibson, Dunn &
// Crutcher LLP"). A partial name that fits more than one firm resolves to nothing.
func ResolveReferenceFirm(name string) (string, bool) {
	var candidates []string
	for _, firm := range MajorLawFirms {
		if FirmsMatch(name, firm) && !containsFirm(candidates, firm) {
			candidates = append(candidates, firm)
		}
	}
	if len(candidates) != 1 {
		return "", false
	}
	return candidates[0], true
}

func containsFirm(firms []string, firm string) bool {
	for _, f := range firms {
		if FirmsMatch(f, firm) {
			return true
		}
	}
	return false
}
