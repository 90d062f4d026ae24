package models

import "fmt"

// Cart is the single mutable cart owned by an account.
type Cart struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
}

// CartItem is one (cart, product) line. UnitPriceCents is the product's
// current discounted price, read live from the catalog; it is never stored
// with the item, so a displayed subtotal tracks catalog price changes until
// checkout freezes it into an order.
type CartItem struct {
	CartID         string `json:"cart_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// LineTotalCents is quantity times the live unit price.
func (i *CartItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// LineTotalDollars formats the line total as a dollar string.
func (i *CartItem) LineTotalDollars() string {
	return fmt.Sprintf("$%.2f", float64(i.LineTotalCents())/100)
}

// SubtotalCents sums line totals across items.
func SubtotalCents(items []*CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotalCents()
	}
	return total
}

// SubtotalDollars formats the subtotal as a dollar string.
func SubtotalDollars(items []*CartItem) string {
	return fmt.Sprintf("$%.2f", float64(SubtotalCents(items))/100)
}

// CountItems sums quantities across items.
func CountItems(items []*CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
