package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/sift/internal/model"
)

var (
	schemeRe = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
	domainRe = regexp.MustCompile(`(?i)^(www\.)?[a-z0-9-]+(\.[a-z0-9-]+)*\.[a-z]{2,}(/\S*)?$`)
)

// NormalizeValue tidies one cell for its column category. Null markers become
// empty and whitespace runs collapse for every category.
func NormalizeValue(category model.Category, v string) string {
	if model.IsNull(v) {
		return ""
	}
	v = strings.Join(strings.Fields(v), " ")

	switch category {
	case model.CategoryEmail:
		return strings.ToLower(v)
	case model.CategoryPhoneNumber:
		return normalizePhone(v)
	case model.CategorySocialLink:
		return normalizeURL(v)
	default:
		return v
	}
}

// normalizePhone joins digit groups with dashes, keeping a leading "+".
// Values that do not look like a phone number are returned unchanged.
func normalizePhone(v string) string {
	var groups []string
	var current strings.Builder
	digits := 0
	for _, r := range v {
		switch {
		case unicode.IsDigit(r):
			current.WriteRune(r)
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '+':
			if current.Len() > 0 {
				groups = append(groups, current.String())
				current.Reset()
			}
		default:
			return v
		}
	}
	if current.Len() > 0 {
		groups = append(groups, current.String())
	}
	if digits < 7 || digits > 15 {
		return v
	}

	out := strings.Join(groups, "-")
	if strings.HasPrefix(v, "+") {
		out = "+" + out
	}
	return out
}

// normalizeURL adds https:// to schemeless domains. Handles and free text are
// left alone.
func normalizeURL(v string) string {
	if schemeRe.MatchString(v) || strings.HasPrefix(v, "@") || !domainRe.MatchString(v) {
		return v
	}
	return "https://" + v
}
