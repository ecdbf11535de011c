package validators

import (
	"net"
	"net/mail"
	"strings"
)

// NormalizeEmail lowercases and trims an address before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmailSyntaxValid accepts bare addresses only ("a@b.c", not "A <a@b.c>").
func IsEmailSyntaxValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	return addr.Address == email && at > 0 && at < len(email)-1
}

// IsEmailDomainValid does a DNS lookup, so it is only used when enabled in
// config.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
