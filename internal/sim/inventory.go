package sim

import (
	"sort"

	"production-simulator/internal/models"
)

// Ledger is the authoritative per-product quantity store. It keeps at most
// one entry per product; entries are created on first credit and never
// deleted, even when the quantity reaches zero.
type Ledger struct {
	quantities map[int64]int
}

// NewLedger creates an empty inventory ledger.
func NewLedger() *Ledger {
	return &Ledger{quantities: make(map[int64]int)}
}

// QuantityOf returns the on-hand quantity for a product, 0 if unknown.
func (l *Ledger) QuantityOf(productID int64) int {
	return l.quantities[productID]
}

// Credit adds qty units of a product. qty must be positive.
func (l *Ledger) Credit(productID int64, qty int) {
	l.quantities[productID] += qty
}

// Debit removes qty units of a product. qty must be positive. Callers are
// required to check availability first; a debit beyond the available
// quantity fails with InsufficientInventoryError and leaves the ledger
// untouched.
func (l *Ledger) Debit(productID int64, qty int) error {
	available := l.quantities[productID]
	if available < qty {
		return &InsufficientInventoryError{
			ProductID: productID,
			Requested: qty,
			Available: available,
		}
	}
	l.quantities[productID] = available - qty
	return nil
}

// Items returns the ledger contents ordered by product id.
func (l *Ledger) Items() []models.InventoryItem {
	items := make([]models.InventoryItem, 0, len(l.quantities))
	for id, qty := range l.quantities {
		items = append(items, models.InventoryItem{ProductID: id, Qty: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

// Restore replaces the ledger contents, keeping one entry per product.
func (l *Ledger) Restore(items []models.InventoryItem) {
	l.quantities = make(map[int64]int, len(items))
	for _, item := range items {
		l.quantities[item.ProductID] = item.Qty
	}
}
