package validation

import (
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom stream-URL rule registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("safe_url", validateSafeURL)
	return v
}

// validateSafeURL accepts only http/https URLs with a real host, and refuses
// loopback and private addresses so a crafted request cannot point the
// fetcher at internal services.
func validateSafeURL(fl validator.FieldLevel) bool {
	urlStr := fl.Field().String()

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if u.Host == "" {
		return false
	}

	host := u.Hostname()

	forbiddenHosts := []string{
		"localhost",
		"127.0.0.1",
		"::1",
		"0.0.0.0",
		"169.254.169.254",
	}

	for _, forbidden := range forbiddenHosts {
		if strings.EqualFold(host, forbidden) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() {
			return false
		}
	}

	return true
}
