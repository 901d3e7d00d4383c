package edgar

// RelevantFilings are the form types that typically carry legal counsel information
// or track company legal relationships. Reverse searches keep only these.
var RelevantFilings = []string{
	// Registration statements
	"S-1", "S-3", "S-4", "S-8",
	"S-1/A", "S-3/A", "S-4/A", "S-8/A",
	"S-3ASR", "S-1MEF", "S-4MEF",
	// Foreign filer registration statements
	"F-1", "F-3", "F-1/A", "F-3/A",
	// Prospectuses
	"424B1", "424B2", "424B3", "424B4", "424B5", "424B7", "424B8",
	// Post-effective amendments
	"POS AM", "POSASR",
	// Regulation D
	"D", "D/A",
	// Tender offers
	"SC TO-I", "SC TO-I/A",
	"SC 13E3", "SC 13E4",
	// Proxy statements
	"DEF 14A", "DEFA14A", "DEFM14A",
	// Periodic reports
	"8-K", "8-K/A",
	"10-K", "10-Q", "10-K/A", "10-Q/A",
	// Beneficial ownership
	"SC 13D", "SC 13G", "SC 13D/A", "SC 13G/A",
	// Correspondence and supplemental
	"CORRESP", "UPLOAD", "EX-24",
	"EFFECT",
}

// HighPriorityLegalFilings is the subset most likely to name outside counsel;
// forward (company) searches only fetch these.
var HighPriorityLegalFilings = []string{
	"S-1", "S-3", "S-4", "S-8",
	"S-1/A", "S-3/A", "S-4/A", "S-8/A",
	"S-3ASR", "S-1MEF", "S-4MEF",
	"F-1", "F-3", "F-1/A", "F-3/A",
	"424B1", "424B2", "424B3", "424B4", "424B5", "424B7", "424B8",
	"POS AM", "POSASR",
	"D", "D/A",
	"SC TO-I", "SC TO-I/A",
	"SC 13E3", "SC 13E4",
	"DEF 14A", "DEFA14A", "DEFM14A",
	"CORRESP", "UPLOAD", "EX-24",
}

// FormSet builds a lookup set from a form list.
func FormSet(forms []string) map[string]bool {
	set := make(map[string]bool, len(forms))
	for _, f := range forms {
		set[f] = true
	}
	return set
}
