package domain

// CartItem is a product line in the cart. Amount is always >= 1.
type CartItem struct {
	Product
	Amount int `json:"amount"`
}

// Cart is an ordered list of items, unique by product id.
// Methods never modify the receiver; mutations return a new Cart.
type Cart []CartItem

func (c Cart) Index(productID int64) int {
	for i, item := range c {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Find(productID int64) (CartItem, bool) {
	i := c.Index(productID)
	if i < 0 {
		return CartItem{}, false
	}
	return c[i], true
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// WithItem returns a copy of the cart with item appended
func (c Cart) WithItem(item CartItem) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, item)
}

// WithAmount returns a copy where the item keeps its position and gets the new amount.
// An unknown id returns an unchanged copy.
func (c Cart) WithAmount(productID int64, amount int) Cart {
	out := c.Clone()
	if i := out.Index(productID); i >= 0 {
		out[i].Amount = amount
	}
	return out
}

// Without returns a copy with the item removed, keeping the relative order of the rest
func (c Cart) Without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// TotalItems sums the amounts of all lines
func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c {
		total += item.Amount
	}
	return total
}

// Valid checks that ids are unique and every amount is positive
func (c Cart) Valid() bool {
	seen := make(map[int64]struct{}, len(c))
	for _, item := range c {
		if item.Amount < 1 {
			return false
		}
		if _, dup := seen[item.ID]; dup {
			return false
		}
		seen[item.ID] = struct{}{}
	}
	return true
}
