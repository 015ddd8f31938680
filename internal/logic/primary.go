package logic

import "strings"

// PrimaryCharacter picks a player's most-used character from a usage map
// such as {"ultimate/fox": 12, "ultimate/falco": 3}. A game prefix is
// stripped and "random" is ignored. Ties resolve to the smaller name.
func PrimaryCharacter(usage map[string]int) (string, bool) {
	counts := make(map[string]int, len(usage))
	for raw, n := range usage {
		if n <= 0 {
			continue
		}
		name := stripGamePrefix(raw)
		if name == "" || strings.EqualFold(name, "random") {
			continue
		}
		counts[name] += n
	}

	best, bestCount := "", 0
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best, bestCount > 0
}

// stripGamePrefix drops everything up to the last '/', as in
// "ultimate/fox", and trims the rest.
func stripGamePrefix(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
