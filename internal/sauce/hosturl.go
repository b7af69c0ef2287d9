package sauce

import (
	"fmt"
	"net/url"
	"strings"
)

// HostURL is a source URL whose hostname has been validated against an
// allow-list. The zero value is invalid; use ParseHostURL.
type HostURL struct {
	raw  string
	host string
}

// ParseHostURL parses raw and verifies its hostname is one of allowed
// (case-insensitive). Only http and https URLs are accepted.
func ParseHostURL(raw string, allowed []string) (HostURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return HostURL{}, fmt.Errorf("parsing source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return HostURL{}, fmt.Errorf("unsupported scheme %q: %w", u.Scheme, ErrHostNotAllowed)
	}
	host := u.Hostname()
	for _, a := range allowed {
		if strings.EqualFold(host, a) {
			return HostURL{raw: u.String(), host: host}, nil
		}
	}
	return HostURL{}, fmt.Errorf("host %q: %w", host, ErrHostNotAllowed)
}

// String returns the validated URL.
func (h HostURL) String() string { return h.raw }

// Hostname returns the validated hostname.
func (h HostURL) Hostname() string { return h.host }
