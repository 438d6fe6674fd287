package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Listing is an active for-sale listing attached to a contact. A listing is
// unique per (contact, zpid); re-scrapes update in place instead of
// duplicating. ListingData keeps the provider payload verbatim.
type Listing struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_listings_uuid" json:"uuid"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_listings_user_id" json:"user_id"`
	ContactID uint      `gorm:"not null;uniqueIndex:uk_listings_contact_zpid,priority:1;index:idx_listings_contact_id" json:"contact_id"`
	Zpid      string    `gorm:"size:64;not null;uniqueIndex:uk_listings_contact_zpid,priority:2" json:"zpid"`

	HomeType        string  `gorm:"size:128" json:"home_type"`
	AddressLine1    string  `gorm:"size:512" json:"address_line1"`
	AddressLine2    string  `gorm:"size:512" json:"address_line2"`
	City            string  `gorm:"size:255" json:"city"`
	State           string  `gorm:"size:64" json:"state"`
	PostalCode      string  `gorm:"size:32" json:"postal_code"`
	Bedrooms        int     `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms       float64 `gorm:"not null;default:0" json:"bathrooms"`
	Price           int64   `gorm:"not null;default:0" json:"price"`
	PriceCurrency   string  `gorm:"size:8" json:"price_currency"`
	Status          string  `gorm:"size:255" json:"status"`
	BrokerageName   string  `gorm:"size:255" json:"brokerage_name"`
	ListingURL      string  `gorm:"size:1024" json:"listing_url"`
	PrimaryPhotoURL string  `gorm:"size:1024" json:"primary_photo_url"`
	LivingAreaValue float64 `gorm:"not null;default:0" json:"living_area_value"`
	LivingAreaUnits string  `gorm:"size:32" json:"living_area_units"`

	ListingData json.RawMessage `gorm:"type:jsonb" json:"listing_data,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate is called before creating a new record
func (l *Listing) BeforeCreate() error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ListingFilter represents filter criteria for listings
type ListingFilter struct {
	ID        *uint      `json:"id,omitempty"`
	UUID      *uuid.UUID `json:"uuid,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	ContactID *uint      `json:"contact_id,omitempty"`
	Zpid      *string    `json:"zpid,omitempty"`
	City      *string    `json:"city,omitempty"`
	State     *string    `json:"state,omitempty"`
	MinPrice  *int64     `json:"min_price,omitempty"`
	MaxPrice  *int64     `json:"max_price,omitempty"`
}
