package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product kinds
const (
	ProductKindRaw      = "raw"
	ProductKindFinished = "finished"
)

// Product is an item in the catalog, either a raw material consumed by
// manufacturing or a finished product produced by it.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// InventoryItem is the on-hand quantity of a single product.
type InventoryItem struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

// Supplier supplies exactly one product at a fixed unit cost and lead time.
type Supplier struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LeadTimeDays int             `json:"lead_time_days"`
}

// Purchase order statuses
const (
	PurchaseStatusPending  = "pending"
	PurchaseStatusReceived = "received"
)

// PurchaseOrder is an order placed with a supplier. The estimated delivery
// date is fixed at creation time from the supplier's lead time.
type PurchaseOrder struct {
	ID                int64     `json:"id"`
	SupplierID        int64     `json:"supplier_id"`
	ProductID         int64     `json:"product_id"`
	Quantity          int       `json:"quantity"`
	IssueDate         time.Time `json:"issue_date"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
	Status            string    `json:"status"`
}

// Manufacturing order statuses
const (
	ManufacturingStatusPending    = "pending"
	ManufacturingStatusInProgress = "in_progress"
	ManufacturingStatusCompleted  = "completed"
)

// ManufacturingOrder is an order to build a quantity of a finished product.
// Status transitions are monotonic: pending -> in_progress -> completed.
type ManufacturingOrder struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
}

// BOMLine is one row of the bill of materials: building one unit of the
// finished product consumes QuantityNeeded units of the raw material.
type BOMLine struct {
	FinishedProductID int64 `json:"finished_product_id"`
	RawMaterialID     int64 `json:"raw_material_id"`
	QuantityNeeded    int   `json:"quantity_needed"`
}

// SimulationConfig holds the parameters a simulation is started with.
type SimulationConfig struct {
	DailyOrderMin    int           `json:"daily_order_min"`
	DailyOrderMax    int           `json:"daily_order_max"`
	OrderQtyMin      int           `json:"order_qty_min"`
	OrderQtyMax      int           `json:"order_qty_max"`
	GenerateArrivals bool          `json:"generate_arrivals"`
	ArrivalSeed      int64         `json:"arrival_seed"`
	InitialInventory map[int64]int `json:"initial_inventory"`
	SimulationDays   int           `json:"simulation_days"`
	StartDate        *time.Time    `json:"start_date,omitempty"`
}

// SimulationState is a snapshot of the aggregate simulation state.
type SimulationState struct {
	CurrentDate       time.Time            `json:"current_date"`
	Inventory         []InventoryItem      `json:"inventory"`
	PendingOrders     []ManufacturingOrder `json:"pending_orders"`
	PendingPurchases  []PurchaseOrder      `json:"pending_purchases"`
	ProductionHistory []ManufacturingOrder `json:"production_history"`
	PurchaseHistory   []PurchaseOrder      `json:"purchase_history"`
}

// PurchaseSuggestion is a recommended restocking purchase derived from
// outstanding material requirements.
type PurchaseSuggestion struct {
	ProductID     int64           `json:"product_id"`
	SupplierID    int64           `json:"supplier_id"`
	Quantity      int             `json:"quantity"`
	LeadTimeDays  int             `json:"lead_time"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// SimulationExport is the structural dump of a simulation: its config,
// state, reference data and the outstanding-requirement ledger.
type SimulationExport struct {
	Config                  SimulationConfig `json:"config"`
	State                   SimulationState  `json:"state"`
	Products                []Product        `json:"products"`
	Suppliers               []Supplier       `json:"suppliers"`
	BillOfMaterials         []BOMLine        `json:"bill_of_materials"`
	OutstandingRequirements map[int64]int    `json:"outstanding_requirements"`
}
