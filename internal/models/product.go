package models

import (
	"fmt"
	"time"
)

// Collection groups products by ceramic line.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CeramicType string `json:"ceramic_type"`
}

// Product is a catalog entry. Prices are integer minor currency units.
type Product struct {
	ID                 string    `json:"id"`
	CollectionID       string    `json:"collection_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Quantity           int       `json:"quantity"`
	PriceCents         int64     `json:"price_cents"`
	DiscountPercentage int       `json:"discount_percentage"`
	CreatedAt          time.Time `json:"created_at"`
}

// IsAvailable reports whether the product has stock left.
func (p *Product) IsAvailable() bool {
	return p.Quantity > 0
}

// DiscountedPriceCents returns the unit price with the percentage discount
// applied. The discount amount is floored to whole cents.
func (p *Product) DiscountedPriceCents() int64 {
	if p.DiscountPercentage > 0 {
		discount := p.PriceCents * int64(p.DiscountPercentage) / 100
		return p.PriceCents - discount
	}
	return p.PriceCents
}

// PriceDollars formats the list price as a dollar string.
func (p *Product) PriceDollars() string {
	return fmt.Sprintf("$%.2f", float64(p.PriceCents)/100)
}

// CreatedRecently reports whether the product was added in the last 30 days.
func (p *Product) CreatedRecently() bool {
	return p.CreatedAt.After(time.Now().AddDate(0, 0, -30))
}
