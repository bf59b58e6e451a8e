package errors

import (
	"strings"
	"unicode"
)

// maxHostLength bounds hostnames per RFC 1035.
const maxHostLength = 253

// ValidateHost validates a server hostname or IP address for safety and
// correctness. It rejects values that could be used for request-path
// injection against the upstream API.
//
// The validation rules are intentionally conservative:
//   - No empty hosts
//   - No control characters or whitespace
//   - No path separators or URL metacharacters
//   - Maximum length of 253 characters
//
// DNS resolution is not attempted; unresolvable hosts surface later as an
// upstream lookup for an offline server.
func ValidateHost(host string) error {
	if host == "" {
		return New(ErrCodeInvalidQuery, "host cannot be empty")
	}

	if len(host) > maxHostLength {
		return New(ErrCodeInvalidQuery, "host too long (max %d characters)", maxHostLength)
	}

	for _, r := range host {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidQuery, "host contains invalid characters")
		}
	}

	if strings.ContainsAny(host, "/\\?#@") {
		return New(ErrCodeInvalidQuery, "host contains invalid characters: %q", host)
	}

	return nil
}

// ValidatePort validates a TCP port number. Zero is accepted and means
// "use the edition's default port".
func ValidatePort(port int) error {
	if port < 0 || port > 65535 {
		return New(ErrCodeInvalidQuery, "port %d out of range [1, 65535]", port)
	}
	return nil
}
