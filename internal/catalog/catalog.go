package catalog

import (
	"errors"
	"fmt"
	"sync"

	"production-simulator/internal/models"
)

var (
	// ErrDuplicateID is returned when a product or supplier id is reused.
	ErrDuplicateID = errors.New("id already exists")

	// ErrDuplicateBOMLine is returned when a (finished, raw) pair is reused.
	ErrDuplicateBOMLine = errors.New("bom line already exists for this product pair")

	// ErrUnknownProduct is returned when a row references a product not in
	// the catalog.
	ErrUnknownProduct = errors.New("product not found")
)

// Store holds the reference data the simulation reads between days:
// products, suppliers and the bill of materials. It is safe for concurrent
// use; insertion order is preserved and meaningful (first-supplier
// selection, BOM row precedence).
type Store struct {
	mu        sync.RWMutex
	products  []models.Product
	suppliers []models.Supplier
	bom       []models.BOMLine
}

// NewStore creates an empty reference-data store.
func NewStore() *Store {
	return &Store{}
}

// CreateProduct adds a product. The id must be unused.
func (s *Store) CreateProduct(p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.ID == p.ID {
			return fmt.Errorf("product %d: %w", p.ID, ErrDuplicateID)
		}
	}
	s.products = append(s.products, p)
	return nil
}

// GetProduct returns a product by id.
func (s *Store) GetProduct(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Products returns all products in insertion order.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// FinishedProductIDs returns the ids of finished products in insertion order.
func (s *Store) FinishedProductIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for _, p := range s.products {
		if p.Kind == models.ProductKindFinished {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// CreateSupplier adds a supplier. The id must be unused and the supplied
// product must exist.
func (s *Store) CreateSupplier(sup models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.suppliers {
		if existing.ID == sup.ID {
			return fmt.Errorf("supplier %d: %w", sup.ID, ErrDuplicateID)
		}
	}
	if !s.hasProduct(sup.ProductID) {
		return fmt.Errorf("supplier %d references product %d: %w", sup.ID, sup.ProductID, ErrUnknownProduct)
	}
	s.suppliers = append(s.suppliers, sup)
	return nil
}

// GetSupplier returns a supplier by id.
func (s *Store) GetSupplier(id int64) (models.Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if sup.ID == id {
			return sup, true
		}
	}
	return models.Supplier{}, false
}

// Suppliers returns all suppliers in insertion order.
func (s *Store) Suppliers() []models.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Supplier(nil), s.suppliers...)
}

// FirstSupplierFor returns the first supplier, in insertion order, that
// supplies the given product.
func (s *Store) FirstSupplierFor(productID int64) (models.Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if sup.ProductID == productID {
			return sup, true
		}
	}
	return models.Supplier{}, false
}

// CreateBOMLine adds a bill-of-materials row. Each (finished, raw) pair
// may appear at most once.
func (s *Store) CreateBOMLine(line models.BOMLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bom {
		if existing.FinishedProductID == line.FinishedProductID &&
			existing.RawMaterialID == line.RawMaterialID {
			return fmt.Errorf("bom line (%d, %d): %w",
				line.FinishedProductID, line.RawMaterialID, ErrDuplicateBOMLine)
		}
	}
	if !s.hasProduct(line.FinishedProductID) {
		return fmt.Errorf("bom line references product %d: %w", line.FinishedProductID, ErrUnknownProduct)
	}
	if !s.hasProduct(line.RawMaterialID) {
		return fmt.Errorf("bom line references product %d: %w", line.RawMaterialID, ErrUnknownProduct)
	}
	s.bom = append(s.bom, line)
	return nil
}

// BOMLines returns the whole bill of materials in insertion order.
func (s *Store) BOMLines() []models.BOMLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BOMLine(nil), s.bom...)
}

// BOMFor returns the rows for one finished product in table order.
func (s *Store) BOMFor(finishedProductID int64) []models.BOMLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lines []models.BOMLine
	for _, line := range s.bom {
		if line.FinishedProductID == finishedProductID {
			lines = append(lines, line)
		}
	}
	return lines
}

// Replace swaps the whole catalog contents, used when importing an
// exported simulation document.
func (s *Store) Replace(products []models.Product, suppliers []models.Supplier, bom []models.BOMLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append([]models.Product(nil), products...)
	s.suppliers = append([]models.Supplier(nil), suppliers...)
	s.bom = append([]models.BOMLine(nil), bom...)
}

func (s *Store) hasProduct(id int64) bool {
	for _, p := range s.products {
		if p.ID == id {
			return true
		}
	}
	return false
}
