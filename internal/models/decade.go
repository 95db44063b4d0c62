package models

import "strconv"

// DecadeRange maps a decade label such as "1950s" to the half-open year
// range [1950, 1960). Labels that are not a four-digit multiple of ten
// followed by "s" ("90s", "1950", "1955s") yield no range.
func DecadeRange(label string) (start, end int, ok bool) {
	if len(label) != 5 || label[4] != 's' {
		return 0, 0, false
	}
	year, err := strconv.Atoi(label[:4])
	if err != nil || year%10 != 0 {
		return 0, 0, false
	}
	return year, year + 10, true
}
