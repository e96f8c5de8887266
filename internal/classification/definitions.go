package classification

import "github.com/Veraticus/sift/internal/model"

// Keywords are the header cues for one category.
type Keywords struct {
	Strong  []string `yaml:"strong"`
	Weak    []string `yaml:"weak"`
	Exclude []string `yaml:"exclude"`
}

// Definition describes how to recognize one category.
type Definition struct {
	Value    ValueScorer
	Category model.Category
	Keywords Keywords
	Weight   float64
}

// DefaultDefinitions returns the built-in definitions for every scored
// category, in canonical order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Category: model.CategoryBusinessName,
			Keywords: Keywords{
				Strong: []string{
					"name", "business_name", "business", "company", "company_name",
					"establishment", "shop_name", "store_name", "restaurant_name",
					"brand", "merchant", "vendor", "organization", "organisation",
				},
				Weak:    []string{"title", "store", "shop", "listing", "place_name"},
				Exclude: []string{"type", "category", "kind", "class", "email", "mail", "phone", "url", "website", "address", "file", "user"},
			},
			Value:  scoreBusinessName,
			Weight: 0.9,
		},
		{
			Category: model.CategoryPhoneNumber,
			Keywords: Keywords{
				Strong: []string{
					"phone", "phone_number", "mobile", "telephone", "cell",
					"contact_number", "tel", "whatsapp",
				},
				Weak:    []string{"number", "contact", "fax"},
				Exclude: []string{"email", "mail"},
			},
			Value:  scorePhone,
			Weight: 1.0,
		},
		{
			Category: model.CategoryEmail,
			Keywords: Keywords{
				Strong: []string{"email", "e_mail", "email_address", "mail", "contact_email"},
				Weak:   []string{"contact"},
			},
			Value:  scoreEmail,
			Weight: 1.0,
		},
		{
			Category: model.CategoryCategory,
			Keywords: Keywords{
				Strong: []string{
					"category", "categories", "type", "business_type", "classification",
					"cuisine", "industry", "sector", "amenity", "amenities", "genre", "kind",
				},
				Weak:    []string{"tag", "tags", "service", "services", "segment", "class", "feature", "features"},
				Exclude: []string{"file", "content", "mime"},
			},
			Value:  scoreCategory,
			Weight: 0.9,
		},
		{
			Category: model.CategoryLocation,
			Keywords: Keywords{
				Strong: []string{
					"address", "location", "full_address", "street", "street_address",
					"city", "state", "country", "zip", "zipcode", "zip_code",
					"postal_code", "postcode", "pincode", "region", "coordinates",
					"lat", "lng", "latitude", "longitude", "locality", "neighborhood",
				},
				Weak:    []string{"area", "place", "district", "town", "addr"},
				Exclude: []string{"email", "ip", "url", "web", "mac"},
			},
			Value:  scoreLocation,
			Weight: 1.0,
		},
		{
			Category: model.CategorySocialLink,
			Keywords: Keywords{
				Strong: []string{
					"website", "url", "social", "social_media", "facebook", "instagram",
					"twitter", "linkedin", "youtube", "tiktok", "homepage", "web",
					"link", "links", "site",
				},
				Weak:    []string{"handle", "profile", "page"},
				Exclude: []string{"email"},
			},
			Value:  scoreSocialLink,
			Weight: 1.0,
		},
		{
			Category: model.CategoryReview,
			Keywords: Keywords{
				Strong: []string{
					"review", "reviews", "rating", "ratings", "feedback", "comment",
					"comments", "stars", "testimonial", "customer_review",
				},
				Weak: []string{"score", "opinion", "satisfaction", "notes"},
			},
			Value:  scoreReview,
			Weight: 0.95,
		},
		{
			Category: model.CategoryOperatingHours,
			Keywords: Keywords{
				Strong: []string{
					"hours", "opening_hours", "operating_hours", "business_hours",
					"open_hours", "timings", "timing", "schedule",
				},
				Weak:    []string{"open", "time", "days", "availability"},
				Exclude: []string{"created", "updated", "modified", "timestamp"},
			},
			Value:  scoreOperatingHours,
			Weight: 1.0,
		},
		{
			Category: model.CategoryPrice,
			Keywords: Keywords{
				Strong: []string{
					"price", "prices", "cost", "fee", "fees", "price_range",
					"amount", "rate", "charges", "pricing",
				},
				Weak:    []string{"budget", "range", "value", "min", "max"},
				Exclude: []string{"rating", "review"},
			},
			Value:  scorePrice,
			Weight: 1.0,
		},
	}
}
