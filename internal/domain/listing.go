package domain

import "time"

// Listing lifecycle statuses.
const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusArchived  = "archived"
)

// Listing conditions.
const (
	ConditionNew      = "new"
	ConditionUsed     = "used"
	ConditionRecycled = "recycled"
)

// Listing is a material offer on the exchange.
// Latitude/Longitude are optional; listings without coordinates never
// receive a proximity score during matchmaking.
type Listing struct {
	ListingID         string     `json:"id" dynamodbav:"listing_id"`
	UserID            string     `json:"user_id" dynamodbav:"user_id"`
	Title             string     `json:"title" dynamodbav:"title"`
	Description       string     `json:"description" dynamodbav:"description"`
	CategoryID        string     `json:"category_id" dynamodbav:"category_id"`
	SubcategoryID     *string    `json:"subcategory_id,omitempty" dynamodbav:"subcategory_id"`
	Quantity          float64    `json:"quantity" dynamodbav:"quantity"`
	Unit              string     `json:"unit" dynamodbav:"unit"`
	Condition         string     `json:"condition" dynamodbav:"condition"` // "new" | "used" | "recycled"
	Price             float64    `json:"price" dynamodbav:"price"`
	PriceUnit         string     `json:"price_unit" dynamodbav:"price_unit"`
	Location          string     `json:"location" dynamodbav:"location"`
	Latitude          *float64   `json:"latitude,omitempty" dynamodbav:"latitude"`
	Longitude         *float64   `json:"longitude,omitempty" dynamodbav:"longitude"`
	// Image and certification entries are storage object keys; clients
	// resolve them to presigned URLs through the listing files endpoint.
	ImageURLs         []string   `json:"image_urls" dynamodbav:"image_urls"`
	CertificationURLs []string   `json:"certification_urls" dynamodbav:"certification_urls"`
	BusinessName      string     `json:"business_name" dynamodbav:"business_name"`
	Status            string     `json:"status" dynamodbav:"status"` // "draft" | "published" | "archived"
	CreatedAt         time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateListingRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description"`
	CategoryID    string   `json:"category_id" validate:"required"`
	SubcategoryID *string  `json:"subcategory_id"`
	Quantity      float64  `json:"quantity" validate:"required,gt=0"`
	Unit          string   `json:"unit" validate:"required"`
	Condition     string   `json:"condition" validate:"required,oneof=new used recycled"`
	Price         float64  `json:"price" validate:"gte=0"`
	PriceUnit     string   `json:"price_unit" validate:"required"`
	Location      string   `json:"location"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type UpdateListingRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	CategoryID    *string  `json:"category_id"`
	SubcategoryID *string  `json:"subcategory_id"`
	Quantity      *float64 `json:"quantity" validate:"omitempty,gt=0"`
	Unit          *string  `json:"unit"`
	Condition     *string  `json:"condition" validate:"omitempty,oneof=new used recycled"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	PriceUnit     *string  `json:"price_unit"`
	Location      *string  `json:"location"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// CandidateFilter describes the hard (conjunctive) filters applied when
// querying listings. Nil fields impose no constraint.
type CandidateFilter struct {
	Status        string
	ExcludeUserID string
	CategoryID    *string
	Condition     *string
	PriceMin      *float64
	PriceMax      *float64
	QuantityMin   *float64
	QuantityMax   *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
