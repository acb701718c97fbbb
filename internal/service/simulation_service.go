package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"production-simulator/internal/broker"
	"production-simulator/internal/catalog"
	"production-simulator/internal/models"
	"production-simulator/internal/sim"
	"production-simulator/internal/snapshot"
	"production-simulator/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSnapshotsDisabled is returned when no snapshot store is configured.
var ErrSnapshotsDisabled = errors.New("snapshot store not configured")

// SimulationService owns one simulation and serializes all access to it.
// The engine itself provides no locking; this service is the required
// external serialization point.
type SimulationService struct {
	mu        sync.Mutex
	catalog   *catalog.Store
	sim       *sim.Simulator
	events    *broker.EventPublisher
	snapshots *snapshot.Store
	logger    *zap.Logger
}

// NewSimulationService creates a new simulation service. The event
// publisher and snapshot store may be nil; publishing and snapshots are
// then skipped and refused respectively.
func NewSimulationService(
	catalogStore *catalog.Store,
	events *broker.EventPublisher,
	snapshots *snapshot.Store,
) *SimulationService {
	return &SimulationService{
		catalog:   catalogStore,
		events:    events,
		snapshots: snapshots,
		logger:    util.GetLogger(),
	}
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	ID         int64      `json:"id" binding:"required"`
	SupplierID int64      `json:"supplier_id" binding:"required"`
	ProductID  int64      `json:"product_id" binding:"required"`
	Quantity   int        `json:"quantity" binding:"required,min=1"`
	IssueDate  *time.Time `json:"issue_date,omitempty"`
}

// CreateManufacturingOrderRequest represents a request to create a manufacturing order
type CreateManufacturingOrderRequest struct {
	ID        int64      `json:"id" binding:"required"`
	ProductID int64      `json:"product_id" binding:"required"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Start initializes a fresh simulation from the given config, replacing
// any running one.
func (s *SimulationService) Start(ctx context.Context, cfg models.SimulationConfig) (models.SimulationState, error) {
	ctx, span := util.StartSpan(ctx, "SimulationService.Start")
	defer span.End()

	s.mu.Lock()
	s.sim = sim.New(cfg, s.catalog, s.catalog)
	state := s.sim.Snapshot()
	s.mu.Unlock()

	s.logger.Info("Simulation started",
		zap.Time("start_date", state.CurrentDate),
		zap.Int("inventory_entries", len(state.Inventory)))

	if s.events != nil {
		event := &models.SimulationStartedEvent{
			BaseEvent:        newBaseEvent(models.EventTypeSimulationStarted),
			StartDate:        state.CurrentDate,
			InitialInventory: cfg.InitialInventory,
		}
		if err := s.events.PublishSimulationStarted(ctx, event); err != nil {
			s.logger.Error("Failed to publish SimulationStarted event", zap.Error(err))
		}
	}

	return state, nil
}

// AdvanceDay advances the simulation by exactly one day and returns the
// resulting state.
func (s *SimulationService) AdvanceDay(ctx context.Context) (models.SimulationState, error) {
	ctx, span := util.StartSpan(ctx, "SimulationService.AdvanceDay")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AdvanceDayLatency.Observe(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return models.SimulationState{}, sim.ErrSimulationNotStarted
	}

	report, err := s.sim.AdvanceDay()
	if err != nil {
		// Only an inventory invariant violation can land here.
		util.InventoryInvariantViolationsTotal.Inc()
		s.logger.Error("Day advance failed", zap.Error(err))
		return models.SimulationState{}, fmt.Errorf("failed to advance day: %w", err)
	}

	util.DaysAdvancedTotal.Inc()
	util.ManufacturingOrdersGeneratedTotal.Add(float64(len(report.Generated)))
	util.PurchasesReceivedTotal.Add(float64(len(report.Received)))
	util.ManufacturingStartedTotal.Add(float64(len(report.Started)))
	util.ManufacturingCompletedTotal.Add(float64(len(report.Completed)))
	util.ManufacturingBlockedTotal.Add(float64(len(report.Blocked)))

	s.logger.Info("Day advanced",
		zap.Time("date", report.State.CurrentDate),
		zap.Int("generated", len(report.Generated)),
		zap.Int("received", len(report.Received)),
		zap.Int("started", len(report.Started)),
		zap.Int("completed", len(report.Completed)),
		zap.Int("blocked", len(report.Blocked)))

	s.publishDayEvents(ctx, report)

	return report.State, nil
}

// publishDayEvents publishes the day summary and per-order lifecycle
// events. Publish failures are logged, never fatal.
func (s *SimulationService) publishDayEvents(ctx context.Context, report *sim.DayReport) {
	if s.events == nil {
		return
	}

	date := report.State.CurrentDate

	dayEvent := &models.DayAdvancedEvent{
		BaseEvent:         newBaseEvent(models.EventTypeDayAdvanced),
		Date:              date,
		OrdersGenerated:   len(report.Generated),
		PurchasesReceived: len(report.Received),
		OrdersStarted:     len(report.Started),
		OrdersCompleted:   len(report.Completed),
		OrdersBlocked:     len(report.Blocked),
	}
	if err := s.events.PublishDayAdvanced(ctx, dayEvent); err != nil {
		s.logger.Error("Failed to publish DayAdvanced event", zap.Error(err))
	}

	for _, po := range report.Received {
		event := &models.PurchaseReceivedEvent{
			BaseEvent:  newBaseEvent(models.EventTypePurchaseReceived),
			OrderID:    po.ID,
			ProductID:  po.ProductID,
			Quantity:   po.Quantity,
			ReceivedOn: date,
		}
		if err := s.events.PublishPurchaseReceived(ctx, event); err != nil {
			s.logger.Error("Failed to publish PurchaseReceived event", zap.Error(err))
		}
	}

	for _, mo := range report.Started {
		event := &models.ManufacturingStartedEvent{
			BaseEvent: newBaseEvent(models.EventTypeManufacturingStarted),
			OrderID:   mo.ID,
			ProductID: mo.ProductID,
			Quantity:  mo.Quantity,
			StartedOn: date,
		}
		if err := s.events.PublishManufacturingStarted(ctx, event); err != nil {
			s.logger.Error("Failed to publish ManufacturingStarted event", zap.Error(err))
		}
	}

	for _, mo := range report.Completed {
		event := &models.ManufacturingCompletedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeManufacturingCompleted),
			OrderID:     mo.ID,
			ProductID:   mo.ProductID,
			Quantity:    mo.Quantity,
			CompletedOn: date,
		}
		if err := s.events.PublishManufacturingCompleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish ManufacturingCompleted event", zap.Error(err))
		}
	}

	for _, blocked := range report.Blocked {
		missing := make([]models.MaterialRequirement, 0, len(blocked.Missing))
		for materialID, qty := range blocked.Missing {
			missing = append(missing, models.MaterialRequirement{ProductID: materialID, Quantity: qty})
		}
		event := &models.ManufacturingBlockedEvent{
			BaseEvent: newBaseEvent(models.EventTypeManufacturingBlocked),
			OrderID:   blocked.Order.ID,
			ProductID: blocked.Order.ProductID,
			Quantity:  blocked.Order.Quantity,
			Missing:   missing,
		}
		if err := s.events.PublishManufacturingBlocked(ctx, event); err != nil {
			s.logger.Error("Failed to publish ManufacturingBlocked event", zap.Error(err))
		}
	}
}

// CreatePurchaseOrder validates and enqueues a pending purchase order,
// computing its estimated delivery date from the supplier's lead time.
func (s *SimulationService) CreatePurchaseOrder(ctx context.Context, req *CreatePurchaseOrderRequest) (*models.PurchaseOrder, error) {
	ctx, span := util.StartSpan(ctx, "SimulationService.CreatePurchaseOrder")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return nil, sim.ErrSimulationNotStarted
	}

	supplier, ok := s.catalog.GetSupplier(req.SupplierID)
	if !ok {
		util.OrderRejectionsTotal.WithLabelValues("missing_supplier").Inc()
		return nil, fmt.Errorf("supplier %d: %w", req.SupplierID, sim.ErrMissingSupplier)
	}

	issueDate := s.sim.CurrentDate()
	if req.IssueDate != nil {
		issueDate = req.IssueDate.Truncate(24 * time.Hour)
	}

	po := models.PurchaseOrder{
		ID:                req.ID,
		SupplierID:        req.SupplierID,
		ProductID:         req.ProductID,
		Quantity:          req.Quantity,
		IssueDate:         issueDate,
		EstimatedDelivery: issueDate.AddDate(0, 0, supplier.LeadTimeDays),
		Status:            models.PurchaseStatusPending,
	}

	if err := s.sim.EnqueuePurchaseOrder(po); err != nil {
		util.OrderRejectionsTotal.WithLabelValues("duplicate_id").Inc()
		return nil, err
	}

	util.PurchaseOrdersCreatedTotal.Inc()
	s.logger.Info("Purchase order created",
		zap.Int64("order_id", po.ID),
		zap.Int64("product_id", po.ProductID),
		zap.Int("quantity", po.Quantity),
		zap.Time("estimated_delivery", po.EstimatedDelivery))

	if s.events != nil {
		event := &models.PurchaseOrderCreatedEvent{
			BaseEvent: newBaseEvent(models.EventTypePurchaseOrderCreated),
			Order:     po,
		}
		if err := s.events.PublishPurchaseOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish PurchaseOrderCreated event", zap.Error(err))
		}
	}

	return &po, nil
}

// CreateManufacturingOrder validates and enqueues a pending manufacturing
// order for a finished product.
func (s *SimulationService) CreateManufacturingOrder(ctx context.Context, req *CreateManufacturingOrderRequest) (*models.ManufacturingOrder, error) {
	ctx, span := util.StartSpan(ctx, "SimulationService.CreateManufacturingOrder")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return nil, sim.ErrSimulationNotStarted
	}

	product, ok := s.catalog.GetProduct(req.ProductID)
	if !ok {
		util.OrderRejectionsTotal.WithLabelValues("unknown_product").Inc()
		return nil, fmt.Errorf("product %d: %w", req.ProductID, sim.ErrUnknownProduct)
	}
	if product.Kind != models.ProductKindFinished {
		util.OrderRejectionsTotal.WithLabelValues("not_finished").Inc()
		return nil, fmt.Errorf("product %d: %w", req.ProductID, sim.ErrNotFinishedProduct)
	}

	createdAt := s.sim.CurrentDate()
	if req.CreatedAt != nil {
		createdAt = req.CreatedAt.Truncate(24 * time.Hour)
	}

	mo := models.ManufacturingOrder{
		ID:        req.ID,
		CreatedAt: createdAt,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Status:    models.ManufacturingStatusPending,
	}

	if err := s.sim.EnqueueManufacturingOrder(mo); err != nil {
		util.OrderRejectionsTotal.WithLabelValues("duplicate_id").Inc()
		return nil, err
	}

	util.ManufacturingOrdersCreatedTotal.Inc()
	s.logger.Info("Manufacturing order created",
		zap.Int64("order_id", mo.ID),
		zap.Int64("product_id", mo.ProductID),
		zap.Int("quantity", mo.Quantity))

	if s.events != nil {
		event := &models.ManufacturingOrderCreatedEvent{
			BaseEvent: newBaseEvent(models.EventTypeManufacturingOrderCreated),
			Order:     mo,
		}
		if err := s.events.PublishManufacturingOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish ManufacturingOrderCreated event", zap.Error(err))
		}
	}

	return &mo, nil
}

// Suggestions returns the current purchase suggestions.
func (s *SimulationService) Suggestions(ctx context.Context) ([]models.PurchaseSuggestion, error) {
	_, span := util.StartSpan(ctx, "SimulationService.Suggestions")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return nil, sim.ErrSimulationNotStarted
	}

	suggestions := s.sim.Suggestions(s.catalog)
	util.SuggestionsEmittedTotal.Add(float64(len(suggestions)))
	return suggestions, nil
}

// AutoReplenish turns every current purchase suggestion into a pending
// purchase order, greedily and without ranking. Returns the created orders.
func (s *SimulationService) AutoReplenish(ctx context.Context) ([]models.PurchaseOrder, error) {
	ctx, span := util.StartSpan(ctx, "SimulationService.AutoReplenish")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return nil, sim.ErrSimulationNotStarted
	}

	suggestions := s.sim.Suggestions(s.catalog)
	if len(suggestions) == 0 {
		return nil, nil
	}

	issueDate := s.sim.CurrentDate()
	created := make([]models.PurchaseOrder, 0, len(suggestions))
	for _, suggestion := range suggestions {
		po := models.PurchaseOrder{
			ID:                s.sim.NextPurchaseOrderID(),
			SupplierID:        suggestion.SupplierID,
			ProductID:         suggestion.ProductID,
			Quantity:          suggestion.Quantity,
			IssueDate:         issueDate,
			EstimatedDelivery: issueDate.AddDate(0, 0, suggestion.LeadTimeDays),
			Status:            models.PurchaseStatusPending,
		}
		if err := s.sim.EnqueuePurchaseOrder(po); err != nil {
			return created, fmt.Errorf("auto replenish product %d: %w", suggestion.ProductID, err)
		}
		util.PurchaseOrdersCreatedTotal.Inc()
		created = append(created, po)

		if s.events != nil {
			event := &models.PurchaseOrderCreatedEvent{
				BaseEvent: newBaseEvent(models.EventTypePurchaseOrderCreated),
				Order:     po,
			}
			if err := s.events.PublishPurchaseOrderCreated(ctx, event); err != nil {
				s.logger.Error("Failed to publish PurchaseOrderCreated event", zap.Error(err))
			}
		}
	}

	s.logger.Info("Auto replenishment created purchase orders", zap.Int("count", len(created)))
	return created, nil
}

// State returns a snapshot of the aggregate simulation state.
func (s *SimulationService) State() (models.SimulationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return models.SimulationState{}, sim.ErrSimulationNotStarted
	}
	return s.sim.Snapshot(), nil
}

// Inventory returns the current inventory, ordered by product id.
func (s *SimulationService) Inventory() ([]models.InventoryItem, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}
	return state.Inventory, nil
}

// PurchaseOrders returns pending and historical purchase orders, optionally
// filtered by status.
func (s *SimulationService) PurchaseOrders(status string) ([]models.PurchaseOrder, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}

	orders := make([]models.PurchaseOrder, 0, len(state.PendingPurchases)+len(state.PurchaseHistory))
	orders = append(orders, state.PendingPurchases...)
	orders = append(orders, state.PurchaseHistory...)
	if status == "" {
		return orders, nil
	}

	filtered := orders[:0]
	for _, po := range orders {
		if po.Status == status {
			filtered = append(filtered, po)
		}
	}
	return filtered, nil
}

// ManufacturingOrders returns pending and historical manufacturing orders,
// optionally filtered by status.
func (s *SimulationService) ManufacturingOrders(status string) ([]models.ManufacturingOrder, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}

	orders := make([]models.ManufacturingOrder, 0, len(state.PendingOrders)+len(state.ProductionHistory))
	orders = append(orders, state.PendingOrders...)
	orders = append(orders, state.ProductionHistory...)
	if status == "" {
		return orders, nil
	}

	filtered := orders[:0]
	for _, mo := range orders {
		if mo.Status == status {
			filtered = append(filtered, mo)
		}
	}
	return filtered, nil
}

// Export returns the structural dump of the simulation and its reference data.
func (s *SimulationService) Export() (models.SimulationExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		return models.SimulationExport{}, sim.ErrSimulationNotStarted
	}

	doc := s.sim.Export()
	doc.Products = s.catalog.Products()
	doc.Suppliers = s.catalog.Suppliers()
	doc.BillOfMaterials = s.catalog.BOMLines()
	return doc, nil
}

// Import replaces the catalog and the running simulation with the contents
// of an exported document.
func (s *SimulationService) Import(doc models.SimulationExport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Replace(doc.Products, doc.Suppliers, doc.BillOfMaterials)
	s.sim = sim.Restore(doc, s.catalog, s.catalog)

	s.logger.Info("Simulation imported",
		zap.Time("current_date", doc.State.CurrentDate),
		zap.Int("products", len(doc.Products)),
		zap.Int("suppliers", len(doc.Suppliers)))
	return nil
}

// SaveSnapshot exports the simulation and stores it under the given name.
func (s *SimulationService) SaveSnapshot(ctx context.Context, name string) error {
	if s.snapshots == nil {
		return ErrSnapshotsDisabled
	}

	doc, err := s.Export()
	if err != nil {
		return err
	}

	if err := s.snapshots.Save(ctx, name, doc); err != nil {
		return err
	}
	util.SnapshotOpsTotal.WithLabelValues("save").Inc()
	s.logger.Info("Snapshot saved", zap.String("name", name))
	return nil
}

// LoadSnapshot restores the simulation from a stored snapshot.
func (s *SimulationService) LoadSnapshot(ctx context.Context, name string) error {
	if s.snapshots == nil {
		return ErrSnapshotsDisabled
	}

	doc, err := s.snapshots.Load(ctx, name)
	if err != nil {
		return err
	}

	if err := s.Import(doc); err != nil {
		return err
	}
	util.SnapshotOpsTotal.WithLabelValues("load").Inc()
	s.logger.Info("Snapshot loaded", zap.String("name", name))
	return nil
}

// ListSnapshots returns the names of stored snapshots.
func (s *SimulationService) ListSnapshots(ctx context.Context) ([]string, error) {
	if s.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	return s.snapshots.List(ctx)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
