package sim

import (
	"testing"

	"production-simulator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDefaultsToZero(t *testing.T) {
	ledger := NewLedger()

	assert.Equal(t, 0, ledger.QuantityOf(42))
}

func TestLedgerCreditAndDebit(t *testing.T) {
	ledger := NewLedger()

	ledger.Credit(1, 100)
	ledger.Credit(1, 50)
	assert.Equal(t, 150, ledger.QuantityOf(1))

	err := ledger.Debit(1, 30)
	require.NoError(t, err)
	assert.Equal(t, 120, ledger.QuantityOf(1))
}

func TestLedgerDebitExactBalance(t *testing.T) {
	ledger := NewLedger()
	ledger.Credit(1, 50)

	err := ledger.Debit(1, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.QuantityOf(1))

	// The entry survives at zero.
	items := ledger.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.InventoryItem{ProductID: 1, Qty: 0}, items[0])
}

func TestLedgerInsufficientDebit(t *testing.T) {
	ledger := NewLedger()
	ledger.Credit(1, 10)

	err := ledger.Debit(1, 11)
	require.Error(t, err)

	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(1), insufficient.ProductID)
	assert.Equal(t, 11, insufficient.Requested)
	assert.Equal(t, 10, insufficient.Available)

	// Failed debit leaves the ledger untouched.
	assert.Equal(t, 10, ledger.QuantityOf(1))
}

func TestLedgerItemsSortedByProduct(t *testing.T) {
	ledger := NewLedger()
	ledger.Credit(3, 1)
	ledger.Credit(1, 2)
	ledger.Credit(2, 3)

	items := ledger.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(2), items[1].ProductID)
	assert.Equal(t, int64(3), items[2].ProductID)
}

func TestLedgerRestore(t *testing.T) {
	ledger := NewLedger()
	ledger.Credit(1, 5)

	ledger.Restore([]models.InventoryItem{
		{ProductID: 7, Qty: 70},
		{ProductID: 8, Qty: 0},
	})

	assert.Equal(t, 0, ledger.QuantityOf(1))
	assert.Equal(t, 70, ledger.QuantityOf(7))
	assert.Len(t, ledger.Items(), 2)
}
