package llm

import (
	"strings"
	"unicode"

	"github.com/Veraticus/sift/internal/model"
)

// labelTable maps normalized provider labels to categories. Display names and
// identifier spellings are added in init.
var labelTable = map[string]model.Category{
	"business":             model.CategoryBusinessName,
	"business name":        model.CategoryBusinessName,
	"company":              model.CategoryBusinessName,
	"company name":         model.CategoryBusinessName,
	"name":                 model.CategoryBusinessName,
	"organization":         model.CategoryBusinessName,
	"phone":                model.CategoryPhoneNumber,
	"phone number":         model.CategoryPhoneNumber,
	"telephone":            model.CategoryPhoneNumber,
	"mobile":               model.CategoryPhoneNumber,
	"contact number":       model.CategoryPhoneNumber,
	"email":                model.CategoryEmail,
	"email address":        model.CategoryEmail,
	"e mail":               model.CategoryEmail,
	"category":             model.CategoryCategory,
	"business category":    model.CategoryCategory,
	"business type":        model.CategoryCategory,
	"type":                 model.CategoryCategory,
	"amenity":              model.CategoryCategory,
	"location":             model.CategoryLocation,
	"address":              model.CategoryLocation,
	"address location":     model.CategoryLocation,
	"city":                 model.CategoryLocation,
	"social":               model.CategorySocialLink,
	"social link":          model.CategorySocialLink,
	"social links":         model.CategorySocialLink,
	"social media":         model.CategorySocialLink,
	"website":              model.CategorySocialLink,
	"url":                  model.CategorySocialLink,
	"link":                 model.CategorySocialLink,
	"website social media": model.CategorySocialLink,
	"review":               model.CategoryReview,
	"reviews":              model.CategoryReview,
	"rating":               model.CategoryReview,
	"customer review":      model.CategoryReview,
	"feedback":             model.CategoryReview,
	"hours":                model.CategoryOperatingHours,
	"operating hours":      model.CategoryOperatingHours,
	"opening hours":        model.CategoryOperatingHours,
	"business hours":       model.CategoryOperatingHours,
	"schedule":             model.CategoryOperatingHours,
	"price":                model.CategoryPrice,
	"pricing":              model.CategoryPrice,
	"cost":                 model.CategoryPrice,
	"price cost":           model.CategoryPrice,
	"price range":          model.CategoryPrice,
	"unknown":              model.CategoryUnknown,
	"junk":                 model.CategoryUnknown,
	"unknown junk":         model.CategoryUnknown,
	"other":                model.CategoryUnknown,
}

func init() {
	for _, c := range model.AllCategories() {
		labelTable[normalizeLabel(string(c))] = c
		labelTable[normalizeLabel(splitCamel(c.ID()))] = c
		labelTable[normalizeLabel(c.ID())] = c
	}
}

// MapLabel maps a free-text provider label onto the closed category set.
// Unrecognized labels map to Unknown.
func MapLabel(label string) model.Category {
	if c, ok := labelTable[normalizeLabel(label)]; ok {
		return c
	}
	return model.CategoryUnknown
}

// normalizeLabel lowercases and collapses punctuation to single spaces.
func normalizeLabel(label string) string {
	fields := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
