package printful

// Recipient is the shipping destination for a fulfillment order.
type Recipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// OrderItem is one line of a fulfillment order, keyed by the catalog
// variant id stored in the shop's product metadata.
type OrderItem struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name,omitempty"`
}

// OrderRequest creates a fulfillment order. ExternalID carries the payment
// session id so replays correlate to the same order on Printful's side.
type OrderRequest struct {
	ExternalID string      `json:"external_id,omitempty"`
	Recipient  Recipient   `json:"recipient"`
	Items      []OrderItem `json:"items"`
}

// Order is the fulfillment partner's view of a submitted order.
type Order struct {
	ID         int64       `json:"id"`
	ExternalID string      `json:"external_id"`
	Status     string      `json:"status"`
	Recipient  Recipient   `json:"recipient"`
	Items      []OrderItem `json:"items"`
}
