package objects

import "strings"

// NormalizeSlug lower-cases s, maps every run of characters outside
// [a-z0-9_-] to a single hyphen, collapses repeated separators, and trims
// leading/trailing separators, the normalization NetBox expects of slug
// fields before uniquing.
func NormalizeSlug(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	lastWasSep := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_' || r == '-':
			isSep := r == '_' || r == '-'
			if isSep && lastWasSep {
				continue
			}
			b.WriteRune(r)
			lastWasSep = isSep
		default:
			if !lastWasSep && b.Len() > 0 {
				b.WriteByte('-')
				lastWasSep = true
			}
		}
	}
	out := strings.Trim(b.String(), "-_")
	if out == "" {
		out = "n-a"
	}
	return out
}
