package models

// CartLine 购物车行，(id, selectedSize, selectedColor) 唯一
type CartLine struct {
	Product
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
	Quantity      int    `json:"quantity"`
}

// SameVariant 是否同一商品规格
func (l CartLine) SameVariant(productID uint, size, color string) bool {
	return l.ID == productID && l.SelectedSize == size && l.SelectedColor == color
}

// Subtotal 行小计
func (l CartLine) Subtotal() Money {
	return l.Price.Times(l.Quantity)
}
