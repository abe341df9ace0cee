// Package inventory holds the stock item model and the in-memory item store.
package inventory

import (
	"fmt"
	"io"
)

// CurrencyTag prefixes every rendered price.
const CurrencyTag = "K"

// Item is a single inventory record.
// ID and Name are set once at construction; Quantity and Price change through Store.Update.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// NewItem creates an Item with all four fields set.
func NewItem(id, name string, quantity int, price float64) Item {
	return Item{
		ID:       id,
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}
}

// Display appends the item to w as one fixed-width line:
// id (5), name (15), quantity (15) and the price with two decimals behind the currency tag.
func (i Item) Display(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%-5s\t\t   | %-15s\t\t    | %-15d\t\t    | %s%.2f\n", i.ID, i.Name, i.Quantity, CurrencyTag, i.Price)
	return err
}
