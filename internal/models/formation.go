package models

import (
	"strconv"
	"strings"
)

// coachCount picks the coach count from either feed flavour. The
// "coaches" string comes from NRE data, the integer "length" from the
// Rail Data Marketplace; a non-zero length wins. "" means unknown.
func coachCount(coaches, length Text) string {
	count := coaches.String()
	if l := length.String(); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			count = strconv.Itoa(n)
		}
	}
	if count == "0" {
		return ""
	}
	return count
}

// CoachesLabel returns "N coaches", or "" when the count is unknown
func CoachesLabel(count string) string {
	if strings.TrimSpace(count) == "" {
		return ""
	}
	return count + " coaches"
}

// FormationText returns " formed of N coaches", or "" when the count is unknown
func FormationText(count string) string {
	if strings.TrimSpace(count) == "" {
		return ""
	}
	return " formed of " + count + " coaches"
}
