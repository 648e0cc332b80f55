package models

import (
	"time"

	"github.com/volatiletech/null"
)

type AssetStatus string

const (
	AssetAvailable AssetStatus = "available"
	AssetLoaned    AssetStatus = "loaned"
	AssetDamaged   AssetStatus = "damaged"
	AssetRetired   AssetStatus = "retired"
)

type Item struct {
	ID             int         `json:"id" db:"it_id"`
	Name           string      `json:"name" db:"it_name"`
	SKU            string      `json:"sku" db:"it_sku"`
	Description    null.String `json:"description" db:"it_description"`
	ImageURL       null.String `json:"imageUrl" db:"it_image_url"`
	MaxTimeOut     int         `json:"maxTimeOut" db:"it_max_time_out"`
	Renewable      bool        `json:"renewable" db:"it_renewable"`
	Active         bool        `json:"active" db:"it_active"`
	CategoryID     null.Int    `json:"categoryId" db:"cat_id"`
	CategoryName   null.String `json:"categoryName" db:"cat_name"`
	AvailableCount int         `json:"availableCount" db:"available_count"`
	TotalCount     int         `json:"totalCount" db:"total_count"`
	CreatedAt      time.Time   `json:"-" db:"created_at"`
}

// CatalogFilter carries the catalog query parameters.
type CatalogFilter struct {
	Search        string
	CategoryID    int
	OnlyAvailable bool
}

type Asset struct {
	ID         int         `json:"id" db:"a_id"`
	ItemID     int         `json:"itemId" db:"it_id"`
	Status     AssetStatus `json:"status" db:"a_status"`
	Condition  null.String `json:"condition" db:"a_condition"`
	LocationID null.Int    `json:"locationId" db:"loc_id"`
	CreatedAt  time.Time   `json:"-" db:"created_at"`
}

type Location struct {
	ID   int    `json:"id" db:"loc_id"`
	Name string `json:"name" db:"loc_name"`
}

type Response struct {
	Success bool `json:"success"`
}
