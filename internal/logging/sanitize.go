package logging

import (
	"net/url"
	"strings"
)

// SanitizeURL drops userinfo, query and fragment so signed CDN links and
// credentials never reach the logs. Scheme, host and path are preserved.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
