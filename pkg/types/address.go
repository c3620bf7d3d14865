package types

import "strings"

// Address is the shipping address snapshot stored on orders and forwarded
// to the fulfillment partner. Persisted as jsonb.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Normalized returns a copy with the fulfillment-side defaults applied:
// missing country becomes US, nil-like fields become empty strings.
func (a Address) Normalized() Address {
	out := a
	if strings.TrimSpace(out.Country) == "" {
		out.Country = "US"
	}
	return out
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}
