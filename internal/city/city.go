package city

import (
	"strings"
	"unicode"
)

// City is a canonical city record as confirmed by the geocoding provider.
// Identity is (Name, CountryCode).
type City struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"country_code"`
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
}

func (c City) SameAs(other City) bool {
	return c.Name == other.Name && c.CountryCode == other.CountryCode
}

// Query returns the "name,CC" form understood by the weather endpoints.
func (c City) Query() string {
	return c.Name + "," + c.CountryCode
}

// ParseQuery splits "name,CC". Tokens after the second comma are dropped.
func ParseQuery(query string) (name, countryCode string, hasCountry bool) {
	if !strings.Contains(query, ",") {
		return strings.TrimSpace(query), "", false
	}
	parts := strings.Split(query, ",")
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// TitleCase upper-cases the first letter of every run of letters and lower-cases
// the rest, so "new york" and "NEW YORK" both become "New York".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToTitle(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
