package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing is one persisted advertisement record. Title and Link are the
// only required fields; everything else degrades to a zero value when
// the detail page omits it.
type Listing struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Link        string     `json:"link" db:"link"`
	Area        string     `json:"area" db:"area"`
	Price       float64    `json:"price" db:"price"`
	Address     string     `json:"address" db:"address"`
	Stations    []string   `json:"stations" db:"stations"`
	Description string     `json:"description" db:"description"`
	PostedRaw   string     `json:"posted_raw" db:"posted_raw"`
	PublishDate *time.Time `json:"publish_date" db:"publish_date"`
	City        string     `json:"city" db:"city"`
	Category    string     `json:"category" db:"category"`
	AdvType     string     `json:"adv_type" db:"adv_type"`
	Seller      Seller     `json:"seller"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Seller is the advertiser block of a detail page. ActiveCount and
// CompletedCount stay empty when the page has no counters block.
type Seller struct {
	Name           string `json:"name" db:"seller_name"`
	Kind           string `json:"kind" db:"seller_kind"`
	ActiveCount    string `json:"active_count" db:"seller_active"`
	CompletedCount string `json:"completed_count" db:"seller_completed"`
	ActiveSummary  string `json:"active_summary" db:"seller_summary"`
}
