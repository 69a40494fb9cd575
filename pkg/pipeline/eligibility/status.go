package eligibility

import (
	"strings"
	"unicode"

	"pescasolic/pkg/domain"
)

// normalizeStatus implements §4.6 step 6: strip accents, lowercase, drop
// non-alphabetic characters, then map the result to the closed verdict
// enum. stdlib strings/unicode suffice for the handful of diacritic rules
// this needs — see DESIGN.md for why golang.org/x/text/unicode/norm would
// be unused weight here.
func normalizeStatus(raw string) domain.EligibilityStatus {
	folded := foldASCII(raw)

	switch folded {
	case "apto", "eligible", "eligivel":
		return domain.EligibilityApto
	case "naoapto", "naoelegivel", "ineligible", "noteligible", "reprovado":
		return domain.EligibilityNaoApto
	}

	if strings.Contains(folded, "apto") && !strings.Contains(folded, "nao") {
		return domain.EligibilityApto
	}
	return domain.EligibilityNaoApto
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

func foldASCII(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
