package misc

import (
	"github.com/go-playground/validator/v10"
	"regexp"
	"strings"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

	// Validator is shared by every package validating structs. It is safe for concurrent use.
	Validator = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// IsFQDN reports whether domain is a fully qualified domain name.
func IsFQDN(domain string) bool {
	return Validator.Var(domain, "required,fqdn") == nil
}

const (
	minSlugLength = 2
	maxSlugLength = 64
)

// Slugify turns s into a value accepted by the slug rule, 2 to 64 characters long. Runs of
// anything but lowercase letters and digits become a single dash.
func Slugify(s string) string {
	slug := strings.Trim(nonSlugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if len(slug) < minSlugLength {
		slug = strings.Trim("user-"+slug, "-")
	}
	return slug
}
