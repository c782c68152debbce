// Package device derives a human-readable client descriptor from the raw
// User-Agent header. The descriptor goes into logs and audit trails; the raw
// header is stored on the record unchanged.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent turns a User-Agent string into a short "Browser on OS"
// descriptor. Unknown agents still produce a non-empty descriptor.
func ParseUserAgent(ua string) string {
	if ua == "" {
		return "Unknown Device"
	}

	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	os := parsed.OSInfo().Name

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.Join(strings.Fields(fmt.Sprintf("%s on %s", browser, os)), " ")
}
