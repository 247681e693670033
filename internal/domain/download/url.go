package download

import (
	"net/url"
	"strings"
)

// ValidateURL checks a submitted source URL before a job record is created.
func ValidateURL(raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return &ValidationError{Reason: "url must not be empty"}
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return &ValidationError{Reason: "url is malformed"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Reason: "url must use http or https"}
	}
	if parsed.Host == "" {
		return &ValidationError{Reason: "url has no host"}
	}
	return nil
}
