package scraper

import (
	"strings"
	"testing"

	"avito_harvester/models"
)

func TestCatalogURL_CommercialVariants(t *testing.T) {
	city := models.City{Name: "Тюмень", Slug: "tyumen"}

	cases := []struct {
		sub      models.SubCategory
		typ      models.ListingType
		fragment string
	}{
		{models.SubCategoryTradingArea, models.ListingTypeSale, "/prodam/magazin-"},
		{models.SubCategoryTradingArea, models.ListingTypeRent, "/sdam/magazin-"},
		{models.SubCategoryOther, models.ListingTypeSale, "/prodam-"},
		{models.SubCategoryOther, models.ListingTypeRent, "/sdam-"},
	}

	for _, tc := range cases {
		f := models.Filter{
			Category:    models.CategoryCommercial,
			SubCategory: tc.sub,
			Type:        tc.typ,
			City:        city,
		}
		url := CatalogURL(f)
		if !strings.HasPrefix(url, "https://www.avito.ru/tyumen/kommercheskaya_nedvizhimost/") {
			t.Fatalf("unexpected prefix: %s", url)
		}
		if !strings.Contains(url, tc.fragment) {
			t.Fatalf("expected %q in %s", tc.fragment, url)
		}
		if !strings.Contains(url, "pmin=17900000") {
			t.Fatalf("expected price floor in %s", url)
		}
	}
}

func TestCatalogURL_HouseAndLand(t *testing.T) {
	city := models.City{Name: "Москва", Slug: "moskva"}

	f := models.Filter{Category: models.CategoryHouse, SubCategory: models.SubCategoryOther, Type: models.ListingTypeSale, City: city}
	if got := CatalogURL(f); got != "https://www.avito.ru/moskva/doma_dachi_kottedzhi/prodam?cd=1" {
		t.Fatalf("unexpected house URL: %s", got)
	}

	f = models.Filter{Category: models.CategoryLand, SubCategory: models.SubCategoryOther, Type: models.ListingTypeRent, City: city}
	if got := CatalogURL(f); got != "https://www.avito.ru/moskva/zemelnye_uchastki/sdam?cd=1" {
		t.Fatalf("unexpected land URL: %s", got)
	}
}

func TestCatalogPageURL(t *testing.T) {
	base := "https://www.avito.ru/moskva/zemelnye_uchastki/sdam?cd=1"
	if got := CatalogPageURL(base, 3); got != base+"&p=3" {
		t.Fatalf("unexpected page URL: %s", got)
	}
}

func TestDetailURL(t *testing.T) {
	if got := DetailURL("/moskva/kommercheskaya_nedvizhimost/pomeschenie-123"); got != "https://www.avito.ru/moskva/kommercheskaya_nedvizhimost/pomeschenie-123" {
		t.Fatalf("unexpected detail URL: %s", got)
	}
	abs := "https://www.avito.ru/moskva/pomeschenie-456"
	if got := DetailURL(abs); got != abs {
		t.Fatalf("absolute URL should pass through, got %s", got)
	}
}

func TestPageParam(t *testing.T) {
	if got := pageParam("/moskva/kommercheskaya_nedvizhimost/prodam?cd=1&p=17"); got != 17 {
		t.Fatalf("expected 17, got %d", got)
	}
	if got := pageParam("/moskva/kommercheskaya_nedvizhimost/prodam?cd=1"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
