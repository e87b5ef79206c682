package judge

import (
	"regexp"
	"strings"
)

// violatedRestriction returns the first restricted keyword used by query, or "".
// Keywords inside comments and quoted literals do not count.
func violatedRestriction(query string, restrictions []string) string {
	body := strings.ToUpper(stripComments(query))
	for _, r := range restrictions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		pattern := `(^|[^A-Z0-9_])` + regexp.QuoteMeta(strings.ToUpper(r)) + `([^A-Z0-9_]|$)`
		if regexp.MustCompile(pattern).MatchString(body) {
			return r
		}
	}
	return ""
}
