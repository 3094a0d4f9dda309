package payment

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
)

func TestNewTransactionID(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN-[0-9A-F]{16}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTransactionID()
		require.Regexp(t, pattern, id)
		require.False(t, seen[id], "duplicate transaction id %s", id)
		seen[id] = true
	}
}

func TestInput_apply(t *testing.T) {
	validate, _ := core.NewValidator()

	in := Input{StudentID: 1, Amount: 150.456, PaymentDate: core.NewDate(2024, 1, 15), PaymentMethod: " cash ", Status: "pending"}
	require.NoError(t, in.Validate(validate))
	pmt := in.apply(Payment{})
	assert.Equal(t, 150.46, pmt.Amount)
	assert.Equal(t, "CASH", pmt.PaymentMethod)
	assert.Equal(t, "PENDING", pmt.Status)
	assert.Regexp(t, `^TXN-`, pmt.TransactionID)

	// an update keeps what the input leaves empty
	in = Input{StudentID: 1, Amount: 20, PaymentDate: core.NewDate(2024, 1, 16)}
	require.NoError(t, in.Validate(validate))
	updated := in.apply(pmt)
	assert.Equal(t, pmt.TransactionID, updated.TransactionID)
	assert.Equal(t, "CASH", updated.PaymentMethod)
	assert.Equal(t, "PENDING", updated.Status)

	in = Input{StudentID: 1, Amount: 20, PaymentDate: core.NewDate(2024, 1, 16), PaymentMethod: "cheque"}
	assert.Error(t, in.Validate(validate))
}
