package sim

import (
	"fmt"
	"sort"
	"time"

	"production-simulator/internal/models"

	"github.com/shopspring/decimal"
)

// SupplierSource picks suppliers for purchase suggestions. The table is
// owned by the reference-data catalog and may change between days.
type SupplierSource interface {
	FirstSupplierFor(productID int64) (models.Supplier, bool)
}

// Simulator owns the aggregate state of one production simulation and
// advances it one day at a time. It provides no internal locking; callers
// must serialize access to a single instance. Independent instances share
// no state.
type Simulator struct {
	cfg      models.SimulationConfig
	bom      BOMSource
	products ProductSource

	current           time.Time
	ledger            *Ledger
	pendingOrders     []*models.ManufacturingOrder
	pendingPurchases  []*models.PurchaseOrder
	productionHistory []models.ManufacturingOrder
	purchaseHistory   []models.PurchaseOrder

	// outstanding accumulates raw-material quantities that blocked
	// manufacturing orders could not obtain, keyed by material id. Failed
	// start attempts add to it; a successful start subtracts the order's
	// requirement once, floored at zero.
	outstanding map[int64]int

	arrivals *OrderGenerator
}

// New creates a simulator with inventory seeded from the config. The start
// date defaults to today at day granularity.
func New(cfg models.SimulationConfig, bom BOMSource, products ProductSource) *Simulator {
	start := time.Now().Truncate(24 * time.Hour)
	if cfg.StartDate != nil {
		start = cfg.StartDate.Truncate(24 * time.Hour)
	}

	s := &Simulator{
		cfg:         cfg,
		bom:         bom,
		products:    products,
		current:     start,
		ledger:      NewLedger(),
		outstanding: make(map[int64]int),
	}
	for productID, qty := range cfg.InitialInventory {
		if qty > 0 {
			s.ledger.Credit(productID, qty)
		}
	}
	if cfg.GenerateArrivals {
		s.arrivals = NewOrderGenerator(cfg)
	}
	return s
}

// Restore rebuilds a simulator from an exported document.
func Restore(doc models.SimulationExport, bom BOMSource, products ProductSource) *Simulator {
	s := New(doc.Config, bom, products)
	s.current = doc.State.CurrentDate
	s.ledger.Restore(doc.State.Inventory)

	s.pendingOrders = make([]*models.ManufacturingOrder, 0, len(doc.State.PendingOrders))
	for i := range doc.State.PendingOrders {
		mo := doc.State.PendingOrders[i]
		s.pendingOrders = append(s.pendingOrders, &mo)
	}
	s.pendingPurchases = make([]*models.PurchaseOrder, 0, len(doc.State.PendingPurchases))
	for i := range doc.State.PendingPurchases {
		po := doc.State.PendingPurchases[i]
		s.pendingPurchases = append(s.pendingPurchases, &po)
	}
	s.productionHistory = append([]models.ManufacturingOrder(nil), doc.State.ProductionHistory...)
	s.purchaseHistory = append([]models.PurchaseOrder(nil), doc.State.PurchaseHistory...)

	s.outstanding = make(map[int64]int, len(doc.OutstandingRequirements))
	for id, qty := range doc.OutstandingRequirements {
		s.outstanding[id] = qty
	}
	return s
}

// DayReport describes everything that happened during one simulated day.
type DayReport struct {
	State     models.SimulationState
	Generated []models.ManufacturingOrder
	Received  []models.PurchaseOrder
	Started   []models.ManufacturingOrder
	Completed []models.ManufacturingOrder
	Blocked   []BlockedOrder
}

// BlockedOrder is a manufacturing order that could not start, with the
// full per-material requirement it recorded.
type BlockedOrder struct {
	Order   models.ManufacturingOrder
	Missing map[int64]int
}

// AdvanceDay runs one simulated day: order arrivals (when enabled), the
// purchase order processor, then the manufacturing order processor, and
// finally commits the advanced date. It is the only path that mutates the
// current date. Both processors see the date being advanced into, so a
// purchase issued with a lead time of n days is received on the n-th
// advance after its issue date.
func (s *Simulator) AdvanceDay() (*DayReport, error) {
	report := &DayReport{}
	next := s.current.AddDate(0, 0, 1)

	if s.arrivals != nil {
		report.Generated = s.generateArrivals(next)
	}
	s.processPurchases(next, report)
	if err := s.processManufacturing(report); err != nil {
		return nil, err
	}
	s.current = next

	report.State = s.Snapshot()
	return report, nil
}

// generateArrivals appends the day's generated orders, assigning ids above
// every id seen so far.
func (s *Simulator) generateArrivals(day time.Time) []models.ManufacturingOrder {
	orders := s.arrivals.Generate(day, s.products)
	nextID := s.maxManufacturingID() + 1
	for i := range orders {
		orders[i].ID = nextID
		nextID++
		mo := orders[i]
		s.pendingOrders = append(s.pendingOrders, &mo)
	}
	return orders
}

// processPurchases receives every pending purchase order due by asOf:
// inventory is credited, the order is marked received and moved to the
// purchase history. Orders not yet due stay pending untouched.
func (s *Simulator) processPurchases(asOf time.Time, report *DayReport) {
	var due []*models.PurchaseOrder
	var remaining []*models.PurchaseOrder
	for _, po := range s.pendingPurchases {
		if !po.EstimatedDelivery.After(asOf) {
			due = append(due, po)
		} else {
			remaining = append(remaining, po)
		}
	}

	for _, po := range due {
		po.Status = models.PurchaseStatusReceived
		s.ledger.Credit(po.ProductID, po.Quantity)
		s.purchaseHistory = append(s.purchaseHistory, *po)
		report.Received = append(report.Received, *po)
	}
	s.pendingPurchases = remaining
}

// processManufacturing runs the two manufacturing phases. Phase A starts
// pending orders, in creation order, whose full material requirement is on
// hand, debiting all materials together. Phase B completes only orders
// that were already in progress when the call began, so every order spends
// at least one full day in progress.
func (s *Simulator) processManufacturing(report *DayReport) error {
	inProgressBefore := make(map[int64]bool)
	for _, mo := range s.pendingOrders {
		if mo.Status == models.ManufacturingStatusInProgress {
			inProgressBefore[mo.ID] = true
		}
	}

	// Phase A
	snapshot := append([]*models.ManufacturingOrder(nil), s.pendingOrders...)
	for _, mo := range snapshot {
		if mo.Status != models.ManufacturingStatusPending {
			continue
		}

		requirements := RequirementsFor(s.bom, mo.ProductID, mo.Quantity)
		if !s.materialsAvailable(requirements) {
			for materialID, qty := range requirements {
				s.outstanding[materialID] += qty
			}
			report.Blocked = append(report.Blocked, BlockedOrder{Order: *mo, Missing: requirements})
			continue
		}

		if err := s.consumeMaterials(requirements); err != nil {
			return fmt.Errorf("starting manufacturing order %d: %w", mo.ID, err)
		}
		s.reduceOutstanding(requirements)
		mo.Status = models.ManufacturingStatusInProgress
		report.Started = append(report.Started, *mo)
	}

	// Phase B
	var remaining []*models.ManufacturingOrder
	for _, mo := range s.pendingOrders {
		if mo.Status == models.ManufacturingStatusInProgress && inProgressBefore[mo.ID] {
			mo.Status = models.ManufacturingStatusCompleted
			s.ledger.Credit(mo.ProductID, mo.Quantity)
			s.productionHistory = append(s.productionHistory, *mo)
			report.Completed = append(report.Completed, *mo)
		} else {
			remaining = append(remaining, mo)
		}
	}
	s.pendingOrders = remaining
	return nil
}

func (s *Simulator) materialsAvailable(requirements map[int64]int) bool {
	for materialID, qty := range requirements {
		if s.ledger.QuantityOf(materialID) < qty {
			return false
		}
	}
	return true
}

func (s *Simulator) consumeMaterials(requirements map[int64]int) error {
	for materialID, qty := range requirements {
		if err := s.ledger.Debit(materialID, qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) reduceOutstanding(requirements map[int64]int) {
	for materialID, qty := range requirements {
		remaining := s.outstanding[materialID] - qty
		if remaining > 0 {
			s.outstanding[materialID] = remaining
		} else {
			delete(s.outstanding, materialID)
		}
	}
}

// EnqueuePurchaseOrder adds a pending purchase order. The id must be
// unused across pending purchases and the purchase history.
func (s *Simulator) EnqueuePurchaseOrder(po models.PurchaseOrder) error {
	if s.purchaseIDUsed(po.ID) {
		return fmt.Errorf("purchase order %d: %w", po.ID, ErrDuplicateID)
	}
	po.Status = models.PurchaseStatusPending
	s.pendingPurchases = append(s.pendingPurchases, &po)
	return nil
}

// EnqueueManufacturingOrder adds a pending manufacturing order. The id
// must be unused across pending orders and the production history.
func (s *Simulator) EnqueueManufacturingOrder(mo models.ManufacturingOrder) error {
	if s.manufacturingIDUsed(mo.ID) {
		return fmt.Errorf("manufacturing order %d: %w", mo.ID, ErrDuplicateID)
	}
	mo.Status = models.ManufacturingStatusPending
	s.pendingOrders = append(s.pendingOrders, &mo)
	return nil
}

// Suggestions derives restocking purchases from the outstanding-requirement
// ledger, in ascending material id order. For each material the shortfall
// is the outstanding requirement minus on-hand inventory and pending
// purchases; materials with no shortfall or no supplier are skipped. The
// first supplier in table order wins; no cost or lead-time ranking.
func (s *Simulator) Suggestions(suppliers SupplierSource) []models.PurchaseSuggestion {
	materialIDs := make([]int64, 0, len(s.outstanding))
	for id := range s.outstanding {
		materialIDs = append(materialIDs, id)
	}
	sort.Slice(materialIDs, func(i, j int) bool { return materialIDs[i] < materialIDs[j] })

	var suggestions []models.PurchaseSuggestion
	for _, materialID := range materialIDs {
		pendingQty := 0
		for _, po := range s.pendingPurchases {
			if po.ProductID == materialID {
				pendingQty += po.Quantity
			}
		}

		shortfall := s.outstanding[materialID] - s.ledger.QuantityOf(materialID) - pendingQty
		if shortfall <= 0 {
			continue
		}

		supplier, ok := suppliers.FirstSupplierFor(materialID)
		if !ok {
			continue
		}

		suggestions = append(suggestions, models.PurchaseSuggestion{
			ProductID:     materialID,
			SupplierID:    supplier.ID,
			Quantity:      shortfall,
			LeadTimeDays:  supplier.LeadTimeDays,
			EstimatedCost: supplier.UnitCost.Mul(decimal.NewFromInt(int64(shortfall))),
		})
	}
	return suggestions
}

// Snapshot returns a copy of the aggregate state.
func (s *Simulator) Snapshot() models.SimulationState {
	state := models.SimulationState{
		CurrentDate:       s.current,
		Inventory:         s.ledger.Items(),
		PendingOrders:     make([]models.ManufacturingOrder, 0, len(s.pendingOrders)),
		PendingPurchases:  make([]models.PurchaseOrder, 0, len(s.pendingPurchases)),
		ProductionHistory: append([]models.ManufacturingOrder(nil), s.productionHistory...),
		PurchaseHistory:   append([]models.PurchaseOrder(nil), s.purchaseHistory...),
	}
	for _, mo := range s.pendingOrders {
		state.PendingOrders = append(state.PendingOrders, *mo)
	}
	for _, po := range s.pendingPurchases {
		state.PendingPurchases = append(state.PendingPurchases, *po)
	}
	return state
}

// Export returns the structural dump of the simulation owned by this
// simulator: config, state and the outstanding-requirement ledger.
// Reference data is appended by the caller.
func (s *Simulator) Export() models.SimulationExport {
	outstanding := make(map[int64]int, len(s.outstanding))
	for id, qty := range s.outstanding {
		outstanding[id] = qty
	}
	return models.SimulationExport{
		Config:                  s.cfg,
		State:                   s.Snapshot(),
		OutstandingRequirements: outstanding,
	}
}

// CurrentDate returns the simulation's current date.
func (s *Simulator) CurrentDate() time.Time {
	return s.current
}

// Config returns the config the simulation was started with.
func (s *Simulator) Config() models.SimulationConfig {
	return s.cfg
}

// NextPurchaseOrderID returns an id above every purchase order id seen so
// far, for callers that create orders programmatically.
func (s *Simulator) NextPurchaseOrderID() int64 {
	var max int64
	for _, po := range s.pendingPurchases {
		if po.ID > max {
			max = po.ID
		}
	}
	for _, po := range s.purchaseHistory {
		if po.ID > max {
			max = po.ID
		}
	}
	return max + 1
}

func (s *Simulator) purchaseIDUsed(id int64) bool {
	for _, po := range s.pendingPurchases {
		if po.ID == id {
			return true
		}
	}
	for _, po := range s.purchaseHistory {
		if po.ID == id {
			return true
		}
	}
	return false
}

func (s *Simulator) manufacturingIDUsed(id int64) bool {
	for _, mo := range s.pendingOrders {
		if mo.ID == id {
			return true
		}
	}
	for _, mo := range s.productionHistory {
		if mo.ID == id {
			return true
		}
	}
	return false
}

func (s *Simulator) maxManufacturingID() int64 {
	var max int64
	for _, mo := range s.pendingOrders {
		if mo.ID > max {
			max = mo.ID
		}
	}
	for _, mo := range s.productionHistory {
		if mo.ID > max {
			max = mo.ID
		}
	}
	return max
}
