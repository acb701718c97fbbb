package sim

import (
	"testing"

	"production-simulator/internal/models"

	"github.com/stretchr/testify/assert"
)

// bomTable is an in-memory BOMSource for tests.
type bomTable []models.BOMLine

func (t bomTable) BOMFor(finishedProductID int64) []models.BOMLine {
	var lines []models.BOMLine
	for _, line := range t {
		if line.FinishedProductID == finishedProductID {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestRequirementsForMultipliesPerUnit(t *testing.T) {
	bom := bomTable{
		{FinishedProductID: 10, RawMaterialID: 1, QuantityNeeded: 10},
		{FinishedProductID: 10, RawMaterialID: 2, QuantityNeeded: 3},
		{FinishedProductID: 11, RawMaterialID: 1, QuantityNeeded: 99},
	}

	requirements := RequirementsFor(bom, 10, 5)

	assert.Equal(t, map[int64]int{1: 50, 2: 15}, requirements)
}

func TestRequirementsForUnknownProduct(t *testing.T) {
	bom := bomTable{
		{FinishedProductID: 10, RawMaterialID: 1, QuantityNeeded: 10},
	}

	requirements := RequirementsFor(bom, 99, 5)

	assert.Empty(t, requirements)
}

func TestRequirementsForDuplicateRowLastWins(t *testing.T) {
	// Duplicate (finished, raw) pairs resolve last-write-wins, not by
	// summation.
	bom := bomTable{
		{FinishedProductID: 10, RawMaterialID: 1, QuantityNeeded: 10},
		{FinishedProductID: 10, RawMaterialID: 1, QuantityNeeded: 4},
	}

	requirements := RequirementsFor(bom, 10, 2)

	assert.Equal(t, map[int64]int{1: 8}, requirements)
}
