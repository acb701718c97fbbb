package sim

import (
	"testing"
	"time"

	"production-simulator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arrivalConfig(seed int64) models.SimulationConfig {
	return models.SimulationConfig{
		GenerateArrivals: true,
		ArrivalSeed:      seed,
		DailyOrderMin:    2,
		DailyOrderMax:    5,
		OrderQtyMin:      1,
		OrderQtyMax:      4,
	}
}

func TestGeneratorRespectsBounds(t *testing.T) {
	g := NewOrderGenerator(arrivalConfig(42))
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		orders := g.Generate(day, productList{finishedID, 5})
		assert.GreaterOrEqual(t, len(orders), 2)
		assert.LessOrEqual(t, len(orders), 5)
		for _, mo := range orders {
			assert.Contains(t, []int64{finishedID, 5}, mo.ProductID)
			assert.GreaterOrEqual(t, mo.Quantity, 1)
			assert.LessOrEqual(t, mo.Quantity, 4)
			assert.Equal(t, models.ManufacturingStatusPending, mo.Status)
			assert.Equal(t, day, mo.CreatedAt)
		}
	}
}

func TestGeneratorDeterministicPerSeed(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	draw := func() []models.ManufacturingOrder {
		g := NewOrderGenerator(arrivalConfig(42))
		var all []models.ManufacturingOrder
		for i := 0; i < 10; i++ {
			all = append(all, g.Generate(day, productList{finishedID})...)
		}
		return all
	}

	assert.Equal(t, draw(), draw())
}

func TestGeneratorNoFinishedProducts(t *testing.T) {
	g := NewOrderGenerator(arrivalConfig(42))
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, g.Generate(day, productList{}))
}

func TestGeneratedOrdersGetUniqueIDs(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := arrivalConfig(7)
	cfg.StartDate = &start
	s := New(cfg, bomTable{}, productList{finishedID})

	// A manually enqueued order must never collide with generated ids.
	require.NoError(t, s.EnqueueManufacturingOrder(models.ManufacturingOrder{
		ID: 3, CreatedAt: start, ProductID: finishedID, Quantity: 1,
	}))

	seen := map[int64]bool{3: true}
	for i := 0; i < 5; i++ {
		report, err := s.AdvanceDay()
		require.NoError(t, err)
		for _, mo := range report.Generated {
			assert.False(t, seen[mo.ID], "id %d reused", mo.ID)
			seen[mo.ID] = true
		}
	}
}
