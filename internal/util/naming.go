package util

import (
	"net/url"
	"strings"
)

// ExpandURL replaces {token} placeholders in pattern with the query-escaped
// value from tokens. Unknown tokens are left as-is. An empty pattern yields "".
func ExpandURL(pattern string, tokens map[string]string) string {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return ""
	}
	for k, v := range tokens {
		p = strings.ReplaceAll(p, "{"+k+"}", url.QueryEscape(v))
	}
	return p
}
