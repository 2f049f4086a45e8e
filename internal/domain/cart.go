package domain

import "time"

type CartItem struct {
	ProductID string
	Quantity  int
}

// Cart is the per-user staging area. It has no authoritative role once an
// order has been created from it.
type Cart struct {
	UserID    string
	Items     []CartItem
	UpdatedAt time.Time
}

func (c *Cart) Find(productID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
