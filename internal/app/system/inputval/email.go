package inputval

import "strings"

// IsValidEmail accepts a bare addr-spec: no display name, no spaces, no
// empty or dot-edged labels. Single-label domains are allowed.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	if strings.ContainsAny(s, " \t<>") {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if strings.Contains(local, "@") {
		return false
	}
	return dotAtom(local) && dotAtom(domain)
}

func dotAtom(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// EmailInDomain reports whether email is valid and belongs to domain,
// compared case-insensitively. Subdomains do not match.
func EmailInDomain(email, domain string) bool {
	email = strings.TrimSpace(email)
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" || !IsValidEmail(email) {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return strings.ToLower(email[at+1:]) == domain
}
