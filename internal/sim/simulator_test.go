package sim

import (
	"testing"
	"time"

	"production-simulator/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// supplierTable is an in-memory SupplierSource for tests.
type supplierTable []models.Supplier

func (t supplierTable) FirstSupplierFor(productID int64) (models.Supplier, bool) {
	for _, sup := range t {
		if sup.ProductID == productID {
			return sup, true
		}
	}
	return models.Supplier{}, false
}

// productList is an in-memory ProductSource for tests.
type productList []int64

func (l productList) FinishedProductIDs() []int64 { return l }

const (
	rawID      = int64(1)
	finishedID = int64(2)
)

var day0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestSimulator(t *testing.T, initial map[int64]int, bom BOMSource) *Simulator {
	t.Helper()
	start := day0
	return New(models.SimulationConfig{
		InitialInventory: initial,
		StartDate:        &start,
	}, bom, productList{finishedID})
}

func printerBOM() bomTable {
	// 10 units of raw material per finished unit.
	return bomTable{
		{FinishedProductID: finishedID, RawMaterialID: rawID, QuantityNeeded: 10},
	}
}

func TestAdvanceDayIncrementsDateExactly(t *testing.T) {
	s := newTestSimulator(t, nil, bomTable{})

	for i := 1; i <= 5; i++ {
		report, err := s.AdvanceDay()
		require.NoError(t, err)
		assert.Equal(t, day0.AddDate(0, 0, i), report.State.CurrentDate)
	}
	assert.Equal(t, day0.AddDate(0, 0, 5), s.CurrentDate())
}

func TestManufacturingLifecycle(t *testing.T) {
	// Scenario: raw=100, finished needs 10 raw per unit, order for 5.
	s := newTestSimulator(t, map[int64]int{rawID: 100}, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	// Day 1: materials available, order starts and consumes 50 raw.
	report, err := s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Started, 1)
	assert.Equal(t, models.ManufacturingStatusInProgress, report.Started[0].Status)
	state := report.State
	require.Len(t, state.PendingOrders, 1)
	assert.Equal(t, models.ManufacturingStatusInProgress, state.PendingOrders[0].Status)
	assert.Equal(t, 50, s.ledger.QuantityOf(rawID))
	assert.Equal(t, 0, s.ledger.QuantityOf(finishedID))
	assert.Empty(t, state.ProductionHistory)

	// Day 2: the order completes and credits finished goods.
	report, err = s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Completed, 1)
	state = report.State
	assert.Empty(t, state.PendingOrders)
	require.Len(t, state.ProductionHistory, 1)
	assert.Equal(t, models.ManufacturingStatusCompleted, state.ProductionHistory[0].Status)
	assert.Equal(t, 50, s.ledger.QuantityOf(rawID))
	assert.Equal(t, 5, s.ledger.QuantityOf(finishedID))
}

func TestOrderSpendsFullDayInProgress(t *testing.T) {
	// An order started by Phase A must not be completed by Phase B in the
	// same invocation.
	s := newTestSimulator(t, map[int64]int{rawID: 100}, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 1,
	}))

	report, err := s.AdvanceDay()
	require.NoError(t, err)
	assert.Len(t, report.Started, 1)
	assert.Empty(t, report.Completed)
}

func TestStartWithExactlyEnoughMaterials(t *testing.T) {
	// Requirement equal to availability starts the order.
	s := newTestSimulator(t, map[int64]int{rawID: 50}, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	report, err := s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Started, 1)
	assert.Equal(t, 0, s.ledger.QuantityOf(rawID))
}

func TestBlockedOrderConsumesNothing(t *testing.T) {
	bom := bomTable{
		{FinishedProductID: finishedID, RawMaterialID: rawID, QuantityNeeded: 10},
		{FinishedProductID: finishedID, RawMaterialID: 3, QuantityNeeded: 1},
	}
	// Enough of material 1, none of material 3: nothing may be debited.
	s := newTestSimulator(t, map[int64]int{rawID: 100}, bom)

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	report, err := s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Blocked, 1)
	assert.Equal(t, map[int64]int{rawID: 50, 3: 5}, report.Blocked[0].Missing)
	assert.Equal(t, 100, s.ledger.QuantityOf(rawID))
	assert.Equal(t, models.ManufacturingStatusPending, report.State.PendingOrders[0].Status)
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	// Scenario: lead time 2, issued on day 0, delivery day 2.
	s := newTestSimulator(t, nil, bomTable{})

	require.NoError(t, s.EnqueuePurchaseOrder(models.PurchaseOrder{
		ID:                1,
		SupplierID:        1,
		ProductID:         rawID,
		Quantity:          50,
		IssueDate:         day0,
		EstimatedDelivery: day0.AddDate(0, 0, 2),
	}))

	// Day 1: not due yet.
	report, err := s.AdvanceDay()
	require.NoError(t, err)
	assert.Empty(t, report.Received)
	require.Len(t, report.State.PendingPurchases, 1)
	assert.Equal(t, models.PurchaseStatusPending, report.State.PendingPurchases[0].Status)
	assert.Equal(t, 0, s.ledger.QuantityOf(rawID))

	// Day 2: received, credited, moved to history.
	report, err = s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Received, 1)
	state := report.State
	assert.Empty(t, state.PendingPurchases)
	require.Len(t, state.PurchaseHistory, 1)
	assert.Equal(t, models.PurchaseStatusReceived, state.PurchaseHistory[0].Status)
	assert.Equal(t, 50, s.ledger.QuantityOf(rawID))
}

func TestBlockedOrderStartsAfterReplenishment(t *testing.T) {
	s := newTestSimulator(t, nil, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	// Blocked for two days running.
	for i := 0; i < 2; i++ {
		report, err := s.AdvanceDay()
		require.NoError(t, err)
		assert.Len(t, report.Blocked, 1)
		assert.Equal(t, models.ManufacturingStatusPending, report.State.PendingOrders[0].Status)
	}

	// Replenish: due the next day, processed before manufacturing, so the
	// same advance receives the purchase and starts the order.
	require.NoError(t, s.EnqueuePurchaseOrder(models.PurchaseOrder{
		ID:                1,
		SupplierID:        1,
		ProductID:         rawID,
		Quantity:          50,
		IssueDate:         s.CurrentDate(),
		EstimatedDelivery: s.CurrentDate().AddDate(0, 0, 1),
	}))

	report, err := s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Received, 1)
	require.Len(t, report.Started, 1)
	assert.Equal(t, 0, s.ledger.QuantityOf(rawID))
}

func TestPurchaseCreditsMatchHistory(t *testing.T) {
	s := newTestSimulator(t, nil, bomTable{})

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, s.EnqueuePurchaseOrder(models.PurchaseOrder{
			ID:                i,
			SupplierID:        1,
			ProductID:         rawID,
			Quantity:          int(10 * i),
			IssueDate:         day0,
			EstimatedDelivery: day0.AddDate(0, 0, int(i)),
		}))
	}

	for i := 0; i < 5; i++ {
		_, err := s.AdvanceDay()
		require.NoError(t, err)
	}

	state := s.Snapshot()
	total := 0
	for _, po := range state.PurchaseHistory {
		total += po.Quantity
	}
	assert.Equal(t, 60, total)
	assert.Equal(t, 60, s.ledger.QuantityOf(rawID))
	assert.Empty(t, state.PendingPurchases)
}

func TestDuplicateOrderIDsRejected(t *testing.T) {
	s := newTestSimulator(t, map[int64]int{rawID: 100}, printerBOM())

	mo := models.ManufacturingOrder{ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 1}
	require.NoError(t, s.EnqueueManufacturingOrder(mo))
	assert.ErrorIs(t, s.EnqueueManufacturingOrder(mo), ErrDuplicateID)

	// Ids stay used after the order moves to history.
	_, err := s.AdvanceDay()
	require.NoError(t, err)
	_, err = s.AdvanceDay()
	require.NoError(t, err)
	assert.ErrorIs(t, s.EnqueueManufacturingOrder(mo), ErrDuplicateID)

	po := models.PurchaseOrder{ID: 7, SupplierID: 1, ProductID: rawID, Quantity: 5,
		IssueDate: day0, EstimatedDelivery: day0.AddDate(0, 0, 1)}
	require.NoError(t, s.EnqueuePurchaseOrder(po))
	assert.ErrorIs(t, s.EnqueuePurchaseOrder(po), ErrDuplicateID)
}

func TestSuggestionsFromOutstandingRequirements(t *testing.T) {
	s := newTestSimulator(t, map[int64]int{rawID: 20}, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	_, err := s.AdvanceDay()
	require.NoError(t, err)

	suppliers := supplierTable{
		{ID: 11, ProductID: rawID, UnitCost: decimal.NewFromInt(3), LeadTimeDays: 4},
		{ID: 12, ProductID: rawID, UnitCost: decimal.NewFromInt(1), LeadTimeDays: 1},
	}

	suggestions := s.Suggestions(suppliers)
	require.Len(t, suggestions, 1)
	got := suggestions[0]
	assert.Equal(t, rawID, got.ProductID)
	// First supplier in table order wins, not the cheapest.
	assert.Equal(t, int64(11), got.SupplierID)
	// Outstanding 50 minus 20 on hand.
	assert.Equal(t, 30, got.Quantity)
	assert.Equal(t, 4, got.LeadTimeDays)
	assert.True(t, decimal.NewFromInt(90).Equal(got.EstimatedCost))
}

func TestSuggestionsAccountForPendingPurchases(t *testing.T) {
	s := newTestSimulator(t, nil, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))
	_, err := s.AdvanceDay()
	require.NoError(t, err)

	require.NoError(t, s.EnqueuePurchaseOrder(models.PurchaseOrder{
		ID: 1, SupplierID: 11, ProductID: rawID, Quantity: 50,
		IssueDate: s.CurrentDate(), EstimatedDelivery: s.CurrentDate().AddDate(0, 0, 5),
	}))

	suppliers := supplierTable{{ID: 11, ProductID: rawID, UnitCost: decimal.NewFromInt(1), LeadTimeDays: 5}}

	// Pending purchases cover the whole requirement: no suggestion.
	assert.Empty(t, s.Suggestions(suppliers))
}

func TestSuggestionsSkipMaterialsWithoutSupplier(t *testing.T) {
	s := newTestSimulator(t, nil, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))
	_, err := s.AdvanceDay()
	require.NoError(t, err)

	assert.Empty(t, s.Suggestions(supplierTable{}))
}

func TestOutstandingAccumulatesAcrossDays(t *testing.T) {
	s := newTestSimulator(t, nil, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	for i := 0; i < 3; i++ {
		_, err := s.AdvanceDay()
		require.NoError(t, err)
	}

	// Three failed attempts of 50 each.
	assert.Equal(t, 150, s.outstanding[rawID])
}

func TestOutstandingReducedWhenOrderStarts(t *testing.T) {
	s := newTestSimulator(t, nil, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 5,
	}))

	_, err := s.AdvanceDay()
	require.NoError(t, err)
	assert.Equal(t, 50, s.outstanding[rawID])

	s.ledger.Credit(rawID, 50)
	report, err := s.AdvanceDay()
	require.NoError(t, err)
	require.Len(t, report.Started, 1)

	// The order's requirement is subtracted once on start, floored at zero.
	_, recorded := s.outstanding[rawID]
	assert.False(t, recorded)
}

func TestDeterministicRuns(t *testing.T) {
	run := func() models.SimulationState {
		start := day0
		cfg := models.SimulationConfig{
			InitialInventory: map[int64]int{rawID: 80},
			StartDate:        &start,
			GenerateArrivals: true,
			ArrivalSeed:      1234,
			DailyOrderMin:    1,
			DailyOrderMax:    3,
			OrderQtyMin:      1,
			OrderQtyMax:      2,
		}
		s := New(cfg, printerBOM(), productList{finishedID})
		require.NoError(t, s.EnqueuePurchaseOrder(models.PurchaseOrder{
			ID: 100, SupplierID: 1, ProductID: rawID, Quantity: 40,
			IssueDate: day0, EstimatedDelivery: day0.AddDate(0, 0, 2),
		}))
		for i := 0; i < 6; i++ {
			_, err := s.AdvanceDay()
			require.NoError(t, err)
		}
		return s.Snapshot()
	}

	assert.Equal(t, run(), run())
}

func TestExportRestoreRoundTrip(t *testing.T) {
	s := newTestSimulator(t, map[int64]int{rawID: 100}, printerBOM())

	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 1, CreatedAt: day0, ProductID: finishedID, Quantity: 20,
	}))
	require.NoError(t, s.EnqueuePurchaseOrder(models.PurchaseOrder{
		ID: 2, SupplierID: 1, ProductID: rawID, Quantity: 120,
		IssueDate: day0, EstimatedDelivery: day0.AddDate(0, 0, 3),
	}))
	_, err := s.AdvanceDay()
	require.NoError(t, err)

	doc := s.Export()
	restored := Restore(doc, printerBOM(), productList{finishedID})

	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, s.outstanding, restored.outstanding)

	// The restored simulator keeps advancing: day 3 receives the purchase
	// and starts the blocked order.
	for i := 0; i < 2; i++ {
		_, err = restored.AdvanceDay()
		require.NoError(t, err)
	}
	state := restored.Snapshot()
	require.Len(t, state.PurchaseHistory, 1)
	require.Len(t, state.PendingOrders, 1)
	assert.Equal(t, models.ManufacturingStatusInProgress, state.PendingOrders[0].Status)
}
