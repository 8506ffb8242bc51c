package validator

import (
	"net"
	"net/url"

	"github.com/go-playground/validator/v10"
)

// NewScanValidationRules registers the public_url rule: the scan target
// must be a resolvable-looking http(s) URL that does not point back into
// the service's own network.
func NewScanValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: func(v *validator.Validate) {
				_ = v.RegisterValidation("public_url", func(fl validator.FieldLevel) bool {
					return isPublicURL(fl.Field().String())
				})
			},
		},
	}
}

func isPublicURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := u.Hostname()
	if host == "" || host == "localhost" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()) {
		return false
	}

	return true
}
