package scraper

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"avito_harvester/models"
)

const siteBase = "https://www.avito.ru"

// The commercial-property catalog URLs carry the site's opaque filter
// hashes (shop objects, pro-profile sellers, minimum price). They are
// not derivable and are kept verbatim per (subcategory, type) pair.
func CatalogURL(f models.Filter) string {
	slug := f.City.Slug

	if f.Category == models.CategoryCommercial {
		switch {
		case f.SubCategory == models.SubCategoryTradingArea && f.Type == models.ListingTypeSale:
			return fmt.Sprintf("%s/%s/kommercheskaya_nedvizhimost/prodam/magazin-ASgBAQICAUSwCNJWAUCGCRSQXQ?pmin=17900000&proprofile=1&f=ASgBAQICAkSwCNJW8hKg2gEBQIYJFJBd&i=1", siteBase, slug)
		case f.SubCategory == models.SubCategoryTradingArea && f.Type == models.ListingTypeRent:
			return fmt.Sprintf("%s/%s/kommercheskaya_nedvizhimost/sdam/magazin-ASgBAQICAUSwCNRWAUDUCBS8WQ?cd=1&f=ASgBAQICAkSwCNRW9BKk2gEBQNQIFLxZ&pmin=17900000&proprofile=1", siteBase, slug)
		case f.Type == models.ListingTypeSale:
			return fmt.Sprintf("%s/%s/kommercheskaya_nedvizhimost/prodam-ASgBAgICAUSwCNJW?cd=1&f=ASgBAQICAkSwCNJW8hKg2gEBQIYJRIqsAcD_AY5dil0&pmin=17900000&proprofile=1", siteBase, slug)
		default:
			return fmt.Sprintf("%s/%s/kommercheskaya_nedvizhimost/sdam-ASgBAgICAUSwCNRW?cd=1&f=ASgBAQICAkSwCNRW9BKk2gEBQNQIRIysAb7_AbpZtlk&pmin=17900000&proprofile=1", siteBase, slug)
		}
	}

	return fmt.Sprintf("%s/%s/%s/%s?cd=1", siteBase, slug, f.Category, f.Type.URLPart())
}

// CatalogPageURL appends the page parameter to a base catalog URL.
func CatalogPageURL(base string, page int) string {
	return base + "&p=" + strconv.Itoa(page)
}

// DetailURL resolves a harvested relative link against the site root.
func DetailURL(rel string) string {
	if strings.HasPrefix(rel, "http") {
		return rel
	}
	return siteBase + rel
}

// pageParam extracts the page number from a pagination link's p= query
// parameter, or 0 when there is none.
func pageParam(href string) int {
	u, err := url.Parse(href)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("p"))
	if err != nil {
		return 0
	}
	return n
}
