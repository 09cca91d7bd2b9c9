package domain

import "github.com/shopspring/decimal"

// Cart is a per-session mapping of product id to requested quantity. It
// lives in the session store only; nothing is persisted until checkout.
type Cart map[string]int

// Count sums the quantities across all lines.
func (c Cart) Count() int {
	n := 0
	for _, qty := range c {
		n += qty
	}
	return n
}

// CartItem is a cart line joined against the current product catalog.
type CartItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
