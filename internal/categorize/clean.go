package categorize

import "strings"

// cleanResponseBody strips the wrapping some model-backed endpoints put
// around their JSON payload: markdown code fences and stray commentary
// before/after the object. Deterministic: known markers first, then the
// first-{ to last-} window, then whitespace trim. The caller keeps the
// original body for diagnostics if parsing still fails.
func cleanResponseBody(body string) string {
	s := strings.TrimSpace(body)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
