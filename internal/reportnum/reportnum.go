package reportnum

import (
	"regexp"
	"strings"
)

var prefixRe = regexp.MustCompile(`^WO[-\s]*`)

// Normalize formats a user-entered report number with the standard
// "WO" prefix. Any existing prefix (including "WO-" and "WO " forms)
// is stripped first so the prefix is never doubled. Empty input stays
// empty; a bare "WO" is never produced.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(prefixRe.ReplaceAllString(s, ""))
	if s == "" {
		return ""
	}
	return "WO" + s
}
