package scraper

import (
	"regexp"
	"strings"

	"avito_harvester/models"
)

// AddressInScope reports whether an extracted address belongs to the
// target city. A missing address is treated as in-scope: ambiguous data
// is kept, only clearly wrong-region addresses are rejected. A region
// pattern match alone suffices; failing that, a city-name substring
// match suffices.
func AddressInScope(address string, city models.City) bool {
	if address == "" {
		return true
	}
	lower := strings.ToLower(address)

	if city.Pattern != "" {
		if re, err := regexp.Compile(city.Pattern); err == nil && re.MatchString(lower) {
			return true
		}
	}
	return strings.Contains(lower, strings.ToLower(city.Name))
}
