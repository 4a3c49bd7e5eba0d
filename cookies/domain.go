package cookies

import (
	"net"
	"regexp"
	"strings"
)

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// SessionDomain returns the apex domain (with a leading dot) the session
// cookie should be scoped to so subdomains share one session. It returns ""
// for IP literals and single-label hosts such as localhost, where browsers
// reject domain-scoped cookies and the attribute must be omitted.
func SessionDomain(host string) string {
	hostname := stripPort(host)
	if hostname == "" || ipv4Pattern.MatchString(hostname) || net.ParseIP(hostname) != nil {
		return ""
	}

	labels := strings.Split(strings.Trim(hostname, "."), ".")
	if len(labels) < 2 {
		return ""
	}
	return "." + strings.Join(labels[len(labels)-2:], ".")
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
