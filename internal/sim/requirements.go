package sim

import "production-simulator/internal/models"

// BOMSource provides bill-of-materials rows for finished products. The
// table is owned by the reference-data catalog and may change between
// days; the engine re-reads it on every pass.
type BOMSource interface {
	BOMFor(finishedProductID int64) []models.BOMLine
}

// RequirementsFor computes the raw materials needed to build quantity
// units of a finished product. When the table holds multiple rows for the
// same (finished, raw) pair, the later row wins.
func RequirementsFor(bom BOMSource, finishedProductID int64, quantity int) map[int64]int {
	requirements := make(map[int64]int)
	for _, line := range bom.BOMFor(finishedProductID) {
		requirements[line.RawMaterialID] = line.QuantityNeeded * quantity
	}
	return requirements
}
