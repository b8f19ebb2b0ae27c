package player

import "strings"

// Teams lists the 32 league team codes in provider spelling.
var Teams = []string{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LAC", "LAR", "LV", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SEA", "SF", "TB", "TEN", "WSH",
}

var teamSet = func() map[string]struct{} {
	out := make(map[string]struct{}, len(Teams))
	for _, code := range Teams {
		out[code] = struct{}{}
	}
	return out
}()

// teamAliases covers the alternate spellings seen in CSV uploads and older feeds.
var teamAliases = map[string]string{
	"GNB": "GB",
	"GBP": "GB",
	"JAC": "JAX",
	"KCC": "KC",
	"KAN": "KC",
	"LVR": "LV",
	"OAK": "LV",
	"NEP": "NE",
	"NWE": "NE",
	"NOS": "NO",
	"NOR": "NO",
	"SFO": "SF",
	"TBB": "TB",
	"TAM": "TB",
	"WAS": "WSH",
	"LA":  "LAR",
	"STL": "LAR",
	"SD":  "LAC",
}

// NormalizeTeam uppercases a code and resolves known aliases. Unknown codes
// are returned uppercased so exact-match comparisons still fail for them.
func NormalizeTeam(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := teamAliases[code]; ok {
		return alias
	}
	return code
}

func IsTeam(code string) bool {
	_, ok := teamSet[code]
	return ok
}
