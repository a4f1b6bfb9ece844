package validation

import (
	"net/url"
	"strings"

	"yt-clip/config"
	"yt-clip/errors"
)

// allowedHosts is an exact-match allow-list. Suffix or wildcard matching is
// deliberately absent: a look-alike domain must never reach a subprocess.
var allowedHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

type Validator struct {
	config *config.Config
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// ValidateURL performs URL validation
func (v *Validator) ValidateURL(urlStr string) error {
	const op = "Validator.ValidateURL"

	if urlStr == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidInput(op, err, "Invalid URL format")
	}

	// Protocol validation
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	// Domain validation
	if !IsAllowedHost(parsedURL.Hostname()) {
		return errors.InvalidInput(op, nil, "Only YouTube URLs are supported")
	}

	return nil
}

// IsAllowedHost reports whether hostname exactly matches a known YouTube host.
func IsAllowedHost(hostname string) bool {
	return allowedHosts[strings.ToLower(hostname)]
}
