package models

import "strings"

// Address is a postal address block. Line2 is optional.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsComplete reports whether every required field is filled.
func (a Address) IsComplete() bool {
	return a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// Account is a registered customer.
type Account struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	BillingAddress  Address `json:"billing_address"`
	ShippingAddress Address `json:"shipping_address"`
}

// DisplayName is the customer's name as shown on fulfilled orders.
func (a *Account) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// HasCompleteAddresses reports whether both billing and shipping addresses are
// filled in. Checkout requires this before a session can be created.
func (a *Account) HasCompleteAddresses() bool {
	return a.BillingAddress.IsComplete() && a.ShippingAddress.IsComplete()
}
