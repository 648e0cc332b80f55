package models

import "time"

// CartLine is one (item, quantity) pair in a session cart.
type CartLine struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}

// Cart is the session-resident cart: an ordered list of lines with unique
// item ids. It lives only inside the session blob and dies with it.
type Cart []CartLine

// Add merges the quantity into an existing line for the item, or appends a
// new line.
func (c Cart) Add(itemID, quantity int) Cart {
	for i := range c {
		if c[i].ItemID == itemID {
			c[i].Quantity += quantity
			return c
		}
	}
	return append(c, CartLine{ItemID: itemID, Quantity: quantity})
}

// Remove drops the line for the item. Removing an absent item is a no-op.
func (c Cart) Remove(itemID int) Cart {
	out := c[:0]
	for _, line := range c {
		if line.ItemID != itemID {
			out = append(out, line)
		}
	}
	return out
}

func (c Cart) Quantity(itemID int) int {
	for _, line := range c {
		if line.ItemID == itemID {
			return line.Quantity
		}
	}
	return 0
}

// RequestLinesFor converts only the lines whose item id is in the given
// set. Checkout uses this with the catalog-resolved ids, so a line whose
// item went inactive since it was added never reaches allocation.
func (c Cart) RequestLinesFor(itemIDs []int) []LoanRequestLine {
	allowed := make(map[int]bool, len(itemIDs))
	for _, id := range itemIDs {
		allowed[id] = true
	}
	lines := make([]LoanRequestLine, 0, len(c))
	for _, l := range c {
		if allowed[l.ItemID] {
			lines = append(lines, LoanRequestLine{ItemID: l.ItemID, Quantity: l.Quantity})
		}
	}
	return lines
}

// CartView is the resolved cart returned to the caller: catalog data merged
// with session quantities plus the checkout date constraints.
type CartView struct {
	Items         []CartItem `json:"items"`
	MinMaxTimeOut int        `json:"minMaxTimeOut"`
	Today         string     `json:"today"`
	MaxReturnDate string     `json:"maxReturnDate"`
}

type CartItem struct {
	Item
	Quantity int `json:"quantity"`
}

// CheckoutWindow computes the minimum loan window across the given items
// and the latest allowed return date counted from now.
func CheckoutWindow(items []CartItem, now time.Time) (int, string) {
	if len(items) == 0 {
		return 0, ""
	}
	min := items[0].MaxTimeOut
	for _, it := range items[1:] {
		if it.MaxTimeOut < min {
			min = it.MaxTimeOut
		}
	}
	return min, now.AddDate(0, 0, min).Format("2006-01-02")
}
