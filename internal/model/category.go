package model

import (
	"fmt"
	"strings"
)

// Category is one label from the closed set of semantic column categories.
// Adding a value is a breaking change: the pattern library and the provider
// label table must both learn about it.
type Category string

// Category constants. The string values are the display names that appear in
// JSON output and in provider prompts.
const (
	CategoryBusinessName   Category = "Business Name"
	CategoryPhoneNumber    Category = "Phone Number"
	CategoryEmail          Category = "Email"
	CategoryCategory       Category = "Category"
	CategoryLocation       Category = "Location"
	CategorySocialLink     Category = "Social Links"
	CategoryReview         Category = "Review"
	CategoryOperatingHours Category = "Hours"
	CategoryPrice          Category = "Price"
	CategoryUnknown        Category = "Unknown / Junk"
)

var allCategories = []Category{
	CategoryBusinessName,
	CategoryPhoneNumber,
	CategoryEmail,
	CategoryCategory,
	CategoryLocation,
	CategorySocialLink,
	CategoryReview,
	CategoryOperatingHours,
	CategoryPrice,
	CategoryUnknown,
}

// AllCategories returns every category in canonical order. The order is also
// the last-resort tie-break used by the local classifier.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ScoredCategories returns every category except Unknown.
func ScoredCategories() []Category {
	return AllCategories()[:len(allCategories)-1]
}

// Valid reports whether c is a member of the closed enum.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index returns the canonical position of c, or -1 for values outside the enum.
func (c Category) Index() int {
	for i, known := range allCategories {
		if known == c {
			return i
		}
	}
	return -1
}

// ID returns the identifier spelling (e.g. "PhoneNumber") used in config files.
func (c Category) ID() string {
	switch c {
	case CategoryBusinessName:
		return "BusinessName"
	case CategoryPhoneNumber:
		return "PhoneNumber"
	case CategoryEmail:
		return "Email"
	case CategoryCategory:
		return "Category"
	case CategoryLocation:
		return "Location"
	case CategorySocialLink:
		return "SocialLink"
	case CategoryReview:
		return "Review"
	case CategoryOperatingHours:
		return "OperatingHours"
	case CategoryPrice:
		return "Price"
	default:
		return "Unknown"
	}
}

// ParseCategory accepts either the display name or the identifier spelling,
// case-insensitively.
func ParseCategory(s string) (Category, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, c := range allCategories {
		if strings.ToLower(string(c)) == needle || strings.ToLower(c.ID()) == needle {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("unknown category %q", s)
}
