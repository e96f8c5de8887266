package classification

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/sift/internal/model"
)

// ValueScorer scores how well a sample of non-null values fits a category.
// It returns a value in [0,1].
type ValueScorer func(values []string, stats model.ColumnStats) float64

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

	phoneCharsRe = regexp.MustCompile(`^\+?[0-9\s().\-]+(\s*(x|ext\.?)\s*\d{1,5})?$`)
	dateLikeRe   = regexp.MustCompile(`^(\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./]\d{2,4})$`)
	decimalRe    = regexp.MustCompile(`^-?\d+\.\d+$`)

	socialDomainRe = regexp.MustCompile(`(?i)(^|[/.@\s])(facebook|fb|instagram|twitter|x|linkedin|youtube|youtu|tiktok|pinterest|yelp|tripadvisor)\.(com|be)\b`)
	schemeURLRe    = regexp.MustCompile(`(?i)^(https?://|www\.)[a-z0-9\-]+(\.[a-z0-9\-]+)*\.[a-z]{2,}(:\d+)?([/?#]\S*)?$`)
	bareDomainRe   = regexp.MustCompile(`(?i)^[a-z0-9\-]+(\.[a-z0-9\-]+)*\.(com|org|net|io|co|in|uk|de|fr|es|it|nl|eu|edu|gov|biz|info|me|app|dev|us|ca|au|ai|shop|store)(/\S*)?$`)
	handleRe       = regexp.MustCompile(`^@[A-Za-z0-9_.]{2,30}$`)

	streetRe     = regexp.MustCompile(`(?i)\b\d+[a-z]?,?\s+([\p{L}'.]+\s+){0,4}(street|st|road|rd|avenue|ave|boulevard|blvd|lane|ln|drive|dr|way|court|ct|place|pl|plaza|square|sq|terrace|highway|hwy|parkway|pkwy|circle|cir|nagar|marg)\b`)
	cityRegionRe = regexp.MustCompile(`^\p{Lu}[\p{L}.'\-]*(\s+\p{Lu}[\p{L}.'\-]*)*,\s*\p{Lu}[\p{L}.'\-]*(\s+\p{Lu}[\p{L}.'\-]*)*(,\s*\p{Lu}[\p{L}.'\-]*(\s+\p{Lu}[\p{L}.'\-]*)*)?(\s+[A-Z0-9]{3,7}(-\d{4})?)?$`)
	latLongRe    = regexp.MustCompile(`^\(?-?\d{1,2}\.\d+\s*,\s*-?\d{1,3}\.\d+\)?$`)
	postalRe     = regexp.MustCompile(`^(\d{5}(-\d{4})?|\d{6}|[A-Z]\d[A-Z]\s?\d[A-Z]\d|[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2})$`)

	ratingSlashRe = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s*/\s*(5|10)\b`)
	ratingOutOfRe = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s+out\s+of\s+(5|10)\b`)
	ratingStarsRe = regexp.MustCompile(`(?i)(\b[1-5](\.\d)?\s*stars?\b|[★⭐]{1,5})`)
	bareRatingRe  = regexp.MustCompile(`^[0-5]\.\d$`)

	currencyAmountRe = regexp.MustCompile(`(?i)^(?:[$€£¥₹]|usd|eur|gbp|inr|rs\.?)\s*\d[\d,]*(\.\d+)?(\s*(-|–|to)\s*(?:[$€£¥₹])?\s*\d[\d,]*(\.\d+)?)?(\s*/\s*[a-z]+)?$`)
	amountCurrencyRe = regexp.MustCompile(`(?i)^\d[\d,]*(\.\d+)?\s*(usd|eur|gbp|inr|dollars?|rupees?|euros?|€|£)(\s*/\s*[a-z]+)?$`)
	priceTierRe      = regexp.MustCompile(`^[$€£₹]{1,4}$`)
	freeRe           = regexp.MustCompile(`(?i)^(free|complimentary)$`)
	twoDecimalRe     = regexp.MustCompile(`^\d+\.\d{2}$`)

	clockRangeRe    = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(am|pm)?\s*(-|–|to)\s*\d{1,2}:\d{2}\s*(am|pm)?`)
	meridiemRangeRe = regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})?\s*(am|pm)\s*(-|–|to)\s*\d{1,2}(:\d{2})?\s*(am|pm)\b`)
	singleTimeRe    = regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})\s*(am|pm)?\b|\b\d{1,2}\s*(am|pm)\b`)
	dayRe           = regexp.MustCompile(`(?i)\b(mon(day)?|tue(s|sday)?|wed(nesday)?|thu(r|rs|rsday)?|fri(day)?|sat(urday)?|sun(day)?)\b`)
	alwaysOpenRe    = regexp.MustCompile(`(?i)(\b24\s*/\s*7\b|\bopen\s+24\s+hours\b|\b24\s+hours\b|^closed$|^open$)`)

	legalSuffixRe = regexp.MustCompile(`(?i)\b(llc|inc|ltd|corp|co|gmbh|plc|pvt|limited|company|bros)\.?$`)
	possessiveRe  = regexp.MustCompile(`\b\p{Lu}\p{Ll}+'s\b`)
	theRe         = regexp.MustCompile(`^The\s+\p{Lu}`)
	allCapsRe     = regexp.MustCompile(`^[A-Z0-9&'.\- ]*[A-Z]{2,}[A-Z0-9&'.\- ]*$`)
)

var cityKeywords = []string{
	"delhi", "mumbai", "bangalore", "bengaluru", "hyderabad", "chennai", "kolkata",
	"pune", "ahmedabad", "jaipur", "lucknow", "gurgaon", "noida",
	"new york", "london", "paris", "tokyo", "sydney", "toronto", "los angeles",
	"chicago", "berlin", "madrid", "rome", "moscow", "san francisco", "boston",
	"seattle", "austin", "dubai", "singapore", "melbourne", "vancouver",
}

var sentimentKeywords = map[string]struct{}{
	"good": {}, "bad": {}, "excellent": {}, "poor": {}, "great": {}, "terrible": {},
	"recommend": {}, "recommended": {}, "satisfied": {}, "disappointed": {},
	"amazing": {}, "awful": {}, "fantastic": {}, "horrible": {}, "wonderful": {},
	"disgusting": {}, "friendly": {}, "rude": {}, "delicious": {}, "loved": {},
	"love": {}, "worst": {}, "best": {}, "okay": {}, "slow": {}, "tasty": {},
}

// categoryKeywords are words that make up business category labels.
var categoryKeywords = map[string]struct{}{
	"restaurant": {}, "restaurants": {}, "cafe": {}, "coffee": {}, "bar": {}, "pub": {},
	"bakery": {}, "pizzeria": {}, "pizza": {}, "bistro": {}, "diner": {}, "buffet": {},
	"fast": {}, "food": {}, "truck": {}, "catering": {}, "brewery": {}, "winery": {},
	"steakhouse": {}, "sushi": {}, "chinese": {}, "italian": {}, "mexican": {},
	"indian": {}, "thai": {}, "japanese": {}, "american": {}, "vegan": {}, "seafood": {},
	"shop": {}, "store": {}, "boutique": {}, "mall": {}, "outlet": {}, "supermarket": {},
	"grocery": {}, "convenience": {}, "department": {}, "retail": {}, "salon": {},
	"spa": {}, "barber": {}, "beauty": {}, "wellness": {}, "massage": {}, "nails": {},
	"dry": {}, "cleaning": {}, "laundry": {}, "repair": {}, "hospital": {}, "clinic": {},
	"pharmacy": {}, "dental": {}, "veterinary": {}, "medical": {}, "doctor": {},
	"dentist": {}, "bank": {}, "atm": {}, "insurance": {}, "legal": {}, "accounting": {},
	"consulting": {}, "real": {}, "estate": {}, "gym": {}, "fitness": {}, "yoga": {},
	"theater": {}, "theatre": {}, "cinema": {}, "movie": {}, "bowling": {}, "golf": {},
	"gas": {}, "station": {}, "petrol": {}, "pump": {}, "auto": {}, "car": {}, "wash": {},
	"dealership": {}, "hotel": {}, "motel": {}, "hostel": {}, "resort": {}, "services": {},
	"service": {}, "and": {}, "plumber": {}, "electrician": {}, "florist": {}, "school": {},
}

// amenityKeywords describe listing features; they count slightly less than
// category labels.
var amenityKeywords = map[string]struct{}{
	"wifi": {}, "wi": {}, "fi": {}, "parking": {}, "wheelchair": {}, "accessible": {},
	"outdoor": {}, "seating": {}, "delivery": {}, "takeout": {}, "takeaway": {},
	"reservations": {}, "pet": {}, "friendly": {}, "drive": {}, "through": {},
	"air": {}, "conditioning": {}, "dine": {}, "in": {},
}

func fraction(values []string, score func(string) float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += score(v)
	}
	return clamp(total / float64(len(values)))
}

func clamp(v float64) float64 {
	return model.ClampConfidence(v)
}

func words(v string) []string {
	return strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func digitRatio(v string) float64 {
	if v == "" {
		return 0
	}
	digits, total := 0, 0
	for _, r := range v {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}

func countDigits(v string) int {
	n := 0
	for _, r := range v {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// keywordTokens reports whether every word of v is in one of the keyword
// sets, and whether any came from the amenity set only.
func keywordTokens(v string) (all bool, amenity bool) {
	tokens := words(v)
	if len(tokens) == 0 {
		return false, false
	}
	for _, tok := range tokens {
		if _, ok := categoryKeywords[tok]; ok {
			continue
		}
		if _, ok := amenityKeywords[tok]; ok {
			amenity = true
			continue
		}
		return false, false
	}
	return true, amenity
}

func isURL(v string) bool {
	if strings.Contains(v, "@") && !strings.Contains(v, "/") {
		return false
	}
	return schemeURLRe.MatchString(v) || bareDomainRe.MatchString(v)
}

func isAddressLike(v string) bool {
	return streetRe.MatchString(v) || cityRegionRe.MatchString(v) || latLongRe.MatchString(v)
}

func scoreEmail(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		if emailRe.MatchString(v) {
			return 1
		}
		return 0
	})
}

func isPhone(v string) bool {
	if !phoneCharsRe.MatchString(v) || dateLikeRe.MatchString(v) || decimalRe.MatchString(v) {
		return false
	}
	digits := countDigits(v)
	return digits >= 7 && digits <= 15
}

func scorePhone(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		if isPhone(v) {
			return 1
		}
		return 0
	})
}

func scoreSocialLink(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		switch {
		case socialDomainRe.MatchString(v) && !emailRe.MatchString(v):
			return 1
		case isURL(v):
			return 1
		case handleRe.MatchString(v):
			return 0.8
		default:
			return 0
		}
	})
}

func scoreLocation(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		if len(words(v)) > 12 || emailRe.MatchString(v) || isURL(v) {
			return 0
		}
		switch {
		case streetRe.MatchString(v), latLongRe.MatchString(v):
			return 1
		case cityRegionRe.MatchString(v):
			return 0.9
		case containsCity(v):
			return 0.8
		case postalRe.MatchString(v):
			return 0.5
		default:
			return 0
		}
	})
}

func containsCity(v string) bool {
	lower := " " + strings.Join(words(v), " ") + " "
	for _, city := range cityKeywords {
		if strings.Contains(lower, " "+city+" ") {
			return true
		}
	}
	return false
}

func scoreReview(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		if ratingSlashRe.MatchString(v) || ratingOutOfRe.MatchString(v) || ratingStarsRe.MatchString(v) {
			if dateLikeRe.MatchString(v) {
				return 0
			}
			return 1
		}
		if bareRatingRe.MatchString(v) {
			return 0.7
		}
		tokens := words(v)
		if len(tokens) >= 2 {
			for _, tok := range tokens {
				if _, ok := sentimentKeywords[tok]; ok {
					return 0.9
				}
			}
		}
		if len(strings.Fields(v)) > 6 {
			return 0.8
		}
		return 0
	})
}

func scoreCategory(values []string, stats model.ColumnStats) float64 {
	lowCardinality := clamp((0.7 - stats.UniqueRatio) / 0.4)
	return fraction(values, func(v string) float64 {
		if all, amenity := keywordTokens(v); all {
			if amenity {
				return 0.9
			}
			return 1
		}
		if isShortLabel(v) {
			return lowCardinality
		}
		return 0
	})
}

func isShortLabel(v string) bool {
	fields := strings.Fields(v)
	if len(fields) == 0 || len(fields) > 3 {
		return false
	}
	first := []rune(fields[0])[0]
	return unicode.IsUpper(first) && digitRatio(v) < 0.1 && !strings.ContainsAny(v, "@/:,")
}

func scoreBusinessName(values []string, stats model.ColumnStats) float64 {
	return fraction(values, properNounScore) * stats.UniqueRatio
}

func properNounScore(v string) float64 {
	fields := strings.Fields(v)
	if len(fields) == 0 || len(fields) > 8 {
		return 0
	}
	if digitRatio(v) > 0.3 || strings.Contains(v, "@") || isURL(v) || isAddressLike(v) {
		return 0
	}
	if all, _ := keywordTokens(v); all {
		return 0
	}

	switch {
	case legalSuffixRe.MatchString(v) && len(fields) > 1:
		return 1
	case possessiveRe.MatchString(v):
		return 1
	case theRe.MatchString(v):
		return 1
	case allCapsRe.MatchString(v):
		return 0.7
	}

	capitalized, alpha := 0, 0
	for _, f := range fields {
		r := []rune(f)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		alpha++
		if unicode.IsUpper(r) {
			capitalized++
		}
	}
	switch {
	case alpha >= 2 && float64(capitalized)/float64(alpha) >= 0.5:
		return 0.9
	case alpha == 1 && capitalized == 1:
		return 0.5
	default:
		return 0
	}
}

func scorePrice(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		switch {
		case currencyAmountRe.MatchString(v), amountCurrencyRe.MatchString(v):
			return 1
		case priceTierRe.MatchString(v), freeRe.MatchString(v):
			return 1
		case twoDecimalRe.MatchString(v):
			return 0.7
		}
		switch strings.ToLower(v) {
		case "cheap", "affordable", "moderate", "expensive", "budget", "premium", "luxury":
			return 0.6
		}
		return 0
	})
}

func scoreOperatingHours(values []string, _ model.ColumnStats) float64 {
	return fraction(values, func(v string) float64 {
		if len(strings.Fields(v)) > 12 {
			return 0
		}
		switch {
		case alwaysOpenRe.MatchString(v):
			return 1
		case clockRangeRe.MatchString(v), meridiemRangeRe.MatchString(v):
			return 1
		}
		day := dayRe.MatchString(v)
		timeOfDay := singleTimeRe.MatchString(v)
		switch {
		case day && timeOfDay:
			return 1
		case day, timeOfDay:
			return 0.8
		default:
			return 0
		}
	})
}
