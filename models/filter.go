package models

// Category is the top-level catalog section an ad is listed under.
type Category string

const (
	CategoryCommercial Category = "kommercheskaya_nedvizhimost"
	CategoryHouse      Category = "doma_dachi_kottedzhi"
	CategoryLand       Category = "zemelnye_uchastki"
)

// Title returns the human-readable label stored with each record.
func (c Category) Title() string {
	switch c {
	case CategoryCommercial:
		return "Коммерческая недвижимость"
	case CategoryHouse:
		return "Дома, дачи, коттеджи"
	case CategoryLand:
		return "Земельные участки"
	}
	return string(c)
}

// SubCategory narrows the commercial category; other categories only
// use SubCategoryOther.
type SubCategory string

const (
	SubCategoryTradingArea SubCategory = "trading_area"
	SubCategoryOther       SubCategory = "other"
)

// ListingType is the deal kind of an ad.
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

func (t ListingType) Title() string {
	if t == ListingTypeRent {
		return "Аренда"
	}
	return "Продажа"
}

// URLPart is the path segment the site uses for the deal kind.
func (t ListingType) URLPart() string {
	if t == ListingTypeRent {
		return "sdam"
	}
	return "prodam"
}

// City identifies one crawl target city: display name, URL slug and the
// region regexp used to validate extracted addresses.
type City struct {
	Name    string `yaml:"name"`
	Slug    string `yaml:"slug"`
	Pattern string `yaml:"pattern"`
}

// Filter is one catalog query: a (category, subcategory, type, city)
// tuple. Filters are value types and never mutated after construction.
type Filter struct {
	Category    Category
	SubCategory SubCategory
	Type        ListingType
	City        City
}

func (f Filter) String() string {
	return string(f.Category) + "/" + string(f.SubCategory) + "/" + string(f.Type) + "/" + f.City.Slug
}

// FilterMatrix expands the fixed set of crawled (category, subcategory,
// type) combinations across the configured cities. Commercial property
// is split into trading areas and everything else; houses and land
// plots have no subcategory split.
func FilterMatrix(cities []City) []Filter {
	combos := []struct {
		cat Category
		sub SubCategory
		typ ListingType
	}{
		{CategoryCommercial, SubCategoryTradingArea, ListingTypeSale},
		{CategoryCommercial, SubCategoryTradingArea, ListingTypeRent},
		{CategoryCommercial, SubCategoryOther, ListingTypeSale},
		{CategoryCommercial, SubCategoryOther, ListingTypeRent},
		{CategoryHouse, SubCategoryOther, ListingTypeSale},
		{CategoryHouse, SubCategoryOther, ListingTypeRent},
		{CategoryLand, SubCategoryOther, ListingTypeSale},
		{CategoryLand, SubCategoryOther, ListingTypeRent},
	}

	var filters []Filter
	for _, city := range cities {
		for _, c := range combos {
			filters = append(filters, Filter{
				Category:    c.cat,
				SubCategory: c.sub,
				Type:        c.typ,
				City:        city,
			})
		}
	}
	return filters
}
