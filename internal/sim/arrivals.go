package sim

import (
	"math/rand"
	"time"

	"production-simulator/internal/models"
)

// ProductSource lists finished products eligible for generated orders.
type ProductSource interface {
	FinishedProductIDs() []int64
}

// OrderGenerator produces daily manufacturing-order arrivals from a seeded
// random source. Given the same seed and catalog, it emits the same orders
// on every run.
type OrderGenerator struct {
	rng       *rand.Rand
	minOrders int
	maxOrders int
	minQty    int
	maxQty    int
}

// NewOrderGenerator creates a generator from the simulation config.
// A zero seed falls back to the wall clock.
func NewOrderGenerator(cfg models.SimulationConfig) *OrderGenerator {
	seed := cfg.ArrivalSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &OrderGenerator{
		rng:       rand.New(rand.NewSource(seed)),
		minOrders: cfg.DailyOrderMin,
		maxOrders: cfg.DailyOrderMax,
		minQty:    cfg.OrderQtyMin,
		maxQty:    cfg.OrderQtyMax,
	}
	if g.maxOrders < g.minOrders {
		g.maxOrders = g.minOrders
	}
	if g.minQty < 1 {
		g.minQty = 1
	}
	if g.maxQty < g.minQty {
		g.maxQty = g.minQty
	}
	return g
}

// Generate draws the day's arrivals: between minOrders and maxOrders
// orders for finished products picked uniformly from the catalog. Order
// ids are left zero for the simulator to assign. Returns nil when the
// catalog has no finished products.
func (g *OrderGenerator) Generate(day time.Time, products ProductSource) []models.ManufacturingOrder {
	ids := products.FinishedProductIDs()
	if len(ids) == 0 {
		return nil
	}

	count := g.minOrders
	if g.maxOrders > g.minOrders {
		count += g.rng.Intn(g.maxOrders - g.minOrders + 1)
	}

	orders := make([]models.ManufacturingOrder, 0, count)
	for i := 0; i < count; i++ {
		qty := g.minQty
		if g.maxQty > g.minQty {
			qty += g.rng.Intn(g.maxQty - g.minQty + 1)
		}
		orders = append(orders, models.ManufacturingOrder{
			CreatedAt: day,
			ProductID: ids[g.rng.Intn(len(ids))],
			Quantity:  qty,
			Status:    models.ManufacturingStatusPending,
		})
	}
	return orders
}
