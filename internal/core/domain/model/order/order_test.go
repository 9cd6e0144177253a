package order_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderedAt = time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

func validAddress(t *testing.T) order.Address {
	t.Helper()
	a, err := order.NewAddress("Jane Roe", "Main St 1", "Berlin", "10115", "de")
	require.NoError(t, err)
	return a
}

func validLine(t *testing.T, number, qty int) order.Line {
	t.Helper()
	l, err := order.NewLine(number, "SKU-1", "4006381333931", qty, 1299)
	require.NoError(t, err)
	return l
}

func TestNewAddress(t *testing.T) {
	t.Run("normalizes country code", func(t *testing.T) {
		a := validAddress(t)

		assert.Equal(t, "DE", a.CountryCode())
		require.NoError(t, a.Validate())
	})

	t.Run("collects every missing field", func(t *testing.T) {
		_, err := order.NewAddress(" ", "", "", "", "GER")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "recipient name")
		assert.Contains(t, err.Error(), "recipient city")
		assert.Contains(t, err.Error(), "recipient country code")
	})

	t.Run("rejects values longer than their columns", func(t *testing.T) {
		cases := map[string][5]string{
			"recipient name":        {strings.Repeat("n", order.MaxNameLength+1), "Main St 1", "Berlin", "10115", "DE"},
			"recipient street":      {"Jane Roe", strings.Repeat("s", order.MaxStreetLength+1), "Berlin", "10115", "DE"},
			"recipient city":        {"Jane Roe", "Main St 1", strings.Repeat("c", order.MaxCityLength+1), "10115", "DE"},
			"recipient postal code": {"Jane Roe", "Main St 1", "Berlin", strings.Repeat("1", order.MaxPostalCodeLength+1), "DE"},
		}
		for field, in := range cases {
			_, err := order.NewAddress(in[0], in[1], in[2], in[3], in[4])

			require.ErrorIs(t, err, errs.ErrValueIsInvalid, field)
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("limits count characters not bytes", func(t *testing.T) {
		city := strings.Repeat("ö", order.MaxCityLength)
		a, err := order.NewAddress("Jane Roe", "Main St 1", city, "10115", "DE")

		require.NoError(t, err)
		assert.Equal(t, city, a.City())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var a order.Address
		require.ErrorIs(t, a.Validate(), errs.ErrValueIsRequired)
	})
}

func TestNewLine(t *testing.T) {
	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := order.NewLine(1, "SKU", "4006381333931", 0, 100)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rejects line number zero", func(t *testing.T) {
		_, err := order.NewLine(0, "SKU", "4006381333931", 1, 100)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("allows missing gtin until packing", func(t *testing.T) {
		l, err := order.NewLine(2, "SKU", "", 1, 100)

		require.NoError(t, err)
		var verr *errs.ValidationError
		require.ErrorAs(t, l.ValidateForPacking(), &verr)
		assert.Equal(t, 2, verr.Line)
		assert.Equal(t, "gtin", verr.Field)
	})

	t.Run("rejects malformed gtin", func(t *testing.T) {
		l, err := order.NewLine(1, "SKU", "40063813339", 1, 100)
		require.NoError(t, err)

		require.ErrorIs(t, l.ValidateForPacking(), errs.ErrValidation)
	})

	t.Run("rejects missing supplier item id", func(t *testing.T) {
		l, err := order.NewLine(4, " ", "4006381333931", 1, 100)
		require.NoError(t, err)

		var verr *errs.ValidationError
		require.ErrorAs(t, l.ValidateForPacking(), &verr)
		assert.Equal(t, "supplierItemId", verr.Field)
	})

	t.Run("rejects supplier item id longer than 64", func(t *testing.T) {
		_, err := order.NewLine(1, strings.Repeat("S", order.MaxSupplierItemIDLength+1), "4006381333931", 1, 100)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "supplierItemId")
	})

	t.Run("rejects gtin longer than 14", func(t *testing.T) {
		_, err := order.NewLine(1, "SKU", "400638133393100", 1, 100)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "gtin")
	})

	t.Run("accepts references at their limit", func(t *testing.T) {
		_, err := order.NewLine(1, strings.Repeat("S", order.MaxSupplierItemIDLength), "40063813339310", 1, 100)

		require.NoError(t, err)
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("valid order", func(t *testing.T) {
		id := kernel.NewUUID()
		o, err := order.NewOrder(id, " PO-1001 ", validAddress(t), "eur", orderedAt, []order.Line{validLine(t, 1, 14)})

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, "PO-1001", o.ExternalRef())
		assert.Equal(t, "EUR", o.Currency())
		assert.Equal(t, 1, o.LineCount())
		assert.False(t, o.IsPacked())
		assert.False(t, o.IsDispatched())
	})

	t.Run("invalid header", func(t *testing.T) {
		_, err := order.NewOrder(kernel.UUID{}, "", order.Address{}, "EURO", time.Time{}, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), kernel.ErrUUIDIsNotConstructed.Error())
		assert.Contains(t, err.Error(), "externalRef")
		assert.Contains(t, err.Error(), "currency")
		assert.Contains(t, err.Error(), "orderedAt")
	})

	t.Run("rejects external ref longer than 64", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), strings.Repeat("R", order.MaxExternalRefLength+1),
			validAddress(t), "EUR", orderedAt, nil)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "externalRef")
	})

	t.Run("lines are copied", func(t *testing.T) {
		lines := []order.Line{validLine(t, 1, 3)}
		o, err := order.NewOrder(kernel.NewUUID(), "PO-2", validAddress(t), "EUR", orderedAt, lines)
		require.NoError(t, err)

		lines[0] = validLine(t, 9, 9)
		got := o.Lines()
		got[0] = validLine(t, 8, 8)

		assert.Equal(t, 1, o.Lines()[0].LineNumber())
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var o *order.Order
		require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
		require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrder_ValidateForPacking(t *testing.T) {
	t.Run("no lines", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), "PO-3", validAddress(t), "EUR", orderedAt, nil)
		require.NoError(t, err)

		require.ErrorIs(t, o.ValidateForPacking(), errs.ErrValidation)
	})

	t.Run("duplicate line numbers", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), "PO-4", validAddress(t), "EUR", orderedAt,
			[]order.Line{validLine(t, 1, 1), validLine(t, 1, 2)})
		require.NoError(t, err)

		var verr *errs.ValidationError
		require.ErrorAs(t, o.ValidateForPacking(), &verr)
		assert.Equal(t, "lineNumber", verr.Field)
	})

	t.Run("names the first bad line", func(t *testing.T) {
		bad, err := order.NewLine(2, "SKU-2", "", 1, 0)
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), "PO-5", validAddress(t), "EUR", orderedAt,
			[]order.Line{validLine(t, 1, 1), bad})
		require.NoError(t, err)

		var verr *errs.ValidationError
		require.ErrorAs(t, o.ValidateForPacking(), &verr)
		assert.Equal(t, 2, verr.Line)
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	o, err := order.NewOrder(kernel.NewUUID(), "PO-6", validAddress(t), "EUR", orderedAt, []order.Line{validLine(t, 1, 1)})
	require.NoError(t, err)

	require.ErrorIs(t, o.MarkDispatched(orderedAt), order.ErrOrderIsNotPacked)

	first := orderedAt.Add(time.Hour)
	o.MarkPacked(first)
	o.MarkPacked(first.Add(time.Hour))
	require.NotNil(t, o.PackedAt())
	assert.Equal(t, first, *o.PackedAt())

	require.NoError(t, o.MarkDispatched(first.Add(2*time.Hour)))
	assert.True(t, o.IsDispatched())
}

func TestOrder_Rejection(t *testing.T) {
	o, err := order.NewOrder(kernel.NewUUID(), "PO-7", validAddress(t), "EUR", orderedAt, []order.Line{validLine(t, 1, 1)})
	require.NoError(t, err)
	assert.False(t, o.IsRejected())
	assert.Nil(t, o.Rejection())

	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	o.Reject("  validation failed: line 1: gtin: is required  ", at)

	require.True(t, o.IsRejected())
	rej := o.Rejection()
	assert.Equal(t, "validation failed: line 1: gtin: is required", rej.Reason)
	assert.Equal(t, at.UTC(), rej.At)
	assert.Equal(t, time.UTC, rej.At.Location())

	rej.Reason = "changed"
	assert.NotEqual(t, "changed", o.Rejection().Reason)

	o.MarkPacked(at.Add(time.Hour))
	assert.False(t, o.IsRejected())
}

func TestOrder_RejectBoundsReason(t *testing.T) {
	o, err := order.NewOrder(kernel.NewUUID(), "PO-8", validAddress(t), "EUR", orderedAt, nil)
	require.NoError(t, err)

	o.Reject(strings.Repeat("é", order.MaxRejectionReasonLength), orderedAt)
	reason := o.Rejection().Reason
	assert.True(t, utf8.ValidString(reason))
	assert.Len(t, reason, order.MaxRejectionReasonLength)

	o.Reject(" ", orderedAt)
	assert.Equal(t, "rejected", o.Rejection().Reason)
}

func TestRestoreOrder_KeepsRejection(t *testing.T) {
	at := orderedAt.Add(time.Hour)
	o, err := order.RestoreOrder(kernel.NewUUID(), "PO-9", validAddress(t), "EUR", orderedAt,
		[]order.Line{validLine(t, 1, 1)}, nil, nil, &order.Rejection{Reason: "serial space exhausted", At: at})

	require.NoError(t, err)
	require.True(t, o.IsRejected())
	assert.Equal(t, "serial space exhausted", o.Rejection().Reason)
	assert.Equal(t, at, o.Rejection().At)
}
