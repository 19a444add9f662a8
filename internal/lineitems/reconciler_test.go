package lineitems

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileUnknownTemplateIsNoop(t *testing.T) {
	reg := NewRegistry()
	rows, err := reg.Reconcile("NOT-REGISTERED", []Row{{"1", "2"}}, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestObiPenaltyAccepts2And25Percent(t *testing.T) {
	reg := NewRegistry()
	rows := []Row{
		{"2,00", "100", "100,00"},  // 2% of 100
		{"25,00", "200", "100,00"}, // 25% of 100
	}
	amount := decimal.NewFromFloat(27.00)
	parsed, err := reg.Reconcile("161001DE001", rows, amount)
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}

func TestObiPenaltyRejectsBadRate(t *testing.T) {
	reg := NewRegistry()
	rows := []Row{
		{"10,00", "100", "100,00"}, // 10%, neither 2% nor 25%
	}
	_, err := reg.Reconcile("161001DE001", rows, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrItemsNotReconciled)
}

func TestRollerReturnRejectsBadTaxRate(t *testing.T) {
	reg := NewRegistry()
	rows := []Row{
		{"1", "100,00", "7,00", "7,00", "107,00"}, // tax rate 7, not 19 or 0
	}
	_, err := reg.Reconcile("171001DE001", rows, decimal.NewFromFloat(107))
	assert.Error(t, err)
}

func TestToomReturnWithinRelativeTolerance(t *testing.T) {
	reg := NewRegistry()
	rows := []Row{
		{"19,00", "2", "50,00"}, // 2 * 50 * 1.19 = 119
	}
	parsed, err := reg.Reconcile("181001DE001", rows, decimal.NewFromFloat(119.5))
	require.NoError(t, err)
	assert.Len(t, parsed, 1)
}

func TestQuantityPriceDifferenceMarkantDebit(t *testing.T) {
	reg := NewRegistry()
	rows := []Row{
		{"10,00", "0,000", "0,000", "0,0000", "0,0000"},
	}
	parsed, err := reg.Reconcile("141001DE002", rows, decimal.NewFromFloat(10))
	require.NoError(t, err)
	assert.Len(t, parsed, 1)
}
