package scraper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"avito_harvester/models"
)

// Field extraction is defensive throughout: every selector miss yields
// a zero value instead of an error, because detail pages routinely omit
// whole blocks. The only field whose absence matters to callers is the
// title, which signals that the page is not a real listing.

var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// ExtractTitle returns the listing title, or "" when the page has none.
func ExtractTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("span.title-info-title-text").First().Text())
}

// ExtractArea pulls the floor area as a bare numeric string. Three page
// layouts are tried in order: the six-span parameter list, a single
// labeled span, and a bare parameter list item.
func ExtractArea(doc *goquery.Document) string {
	params := doc.Find("div.item-params")
	if params.Length() == 0 {
		return ""
	}

	spans := params.Find("span")
	if spans.Length() == 6 {
		parts := strings.SplitN(params.Find("li").Text(), ":", 2)
		if len(parts) > 1 {
			return trimStrayDot(stripNonNumeric(parts[1]))
		}
		return ""
	}

	if spans.Length() > 0 {
		parts := strings.SplitN(spans.First().Text(), ":", 2)
		if len(parts) > 1 {
			return trimStrayDot(stripNonNumeric(parts[1]))
		}
	}

	li := params.Find("li.item-params-list-item").First()
	if li.Length() > 0 {
		return trimStrayDot(stripNonNumeric(li.Text()))
	}
	return ""
}

// ExtractPrice parses the price node. Many listings legitimately omit
// the price ("цена по запросу"), so absence and garbage both yield zero.
func ExtractPrice(doc *goquery.Document) float64 {
	priceEl := doc.Find("span.js-item-price[itemprop=price]").First()
	if priceEl.Length() == 0 {
		return 0
	}
	// Prices come space-grouped, sometimes with non-breaking spaces.
	raw := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, priceEl.Text())
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return price
}

func ExtractAddress(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("span.item-address__string").First().Text())
}

// ExtractStations returns nearby transit stations in document order.
func ExtractStations(doc *goquery.Document) []string {
	var stations []string
	doc.Find("span.item-address-georeferences").First().
		Find("span.item-address-georeferences-item").
		Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				stations = append(stations, text)
			}
		})
	return stations
}

func ExtractDescription(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("div.item-description").First().Text())
}

// ExtractPostedRaw returns the raw posted stamp text fed to the date
// resolver.
func ExtractPostedRaw(doc *goquery.Document) string {
	text := doc.Find("div.title-info-metadata-item-redesign").First().Text()
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
}

// ExtractSeller reads the three-slot advertiser block. The third slot
// with active/completed counters is optional and simply left empty when
// missing. The "active listings" summary lives in a JSON blob attached
// to the favorites button; malformed JSON yields an empty summary.
func ExtractSeller(doc *goquery.Document) models.Seller {
	var seller models.Seller

	col := doc.Find("div.seller-info-col").First()
	if col.Length() > 0 {
		kids := col.Children()
		if kids.Length() >= 2 {
			seller.Name = strings.TrimSpace(kids.Eq(0).Text())
			seller.Kind = strings.TrimSpace(kids.Eq(1).Text())
		}
		if kids.Length() > 2 {
			counters := kids.Eq(2).Children()
			if counters.Length() > 1 {
				seller.ActiveCount = cleanLine(counters.Eq(0).Text())
				seller.CompletedCount = cleanLine(counters.Eq(1).Text())
			}
		}
	}

	if props, ok := doc.Find("div.seller-info-favorite-seller-buttons [data-props]").Attr("data-props"); ok {
		var blob map[string]interface{}
		if err := json.Unmarshal([]byte(props), &blob); err == nil {
			if summary, ok := blob["summary"].(string); ok {
				seller.ActiveSummary = summary
			}
		}
	}

	return seller
}

func stripNonNumeric(s string) string {
	return nonNumericRe.ReplaceAllString(s, "")
}

func trimStrayDot(s string) string {
	return strings.TrimSuffix(s, ".")
}

func cleanLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", ""))
}
