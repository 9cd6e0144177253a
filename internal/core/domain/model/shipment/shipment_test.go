package shipment_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(t *testing.T, line, qty int) shipment.Item {
	t.Helper()
	it, err := shipment.NewItem(line, "SKU-1", "4006381333931", qty)
	require.NoError(t, err)
	return it
}

func TestNewShipment(t *testing.T) {
	created := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		id, orderID := kernel.NewUUID(), kernel.NewUUID()
		s, err := shipment.NewShipment(id, orderID, 1, "006141410000000015", 7, "DHL",
			shipment.PackageTypeBox, []shipment.Item{item(t, 1, 12), item(t, 2, 3)}, created)

		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.True(t, s.ID().IsEqual(id))
		assert.True(t, s.OrderID().IsEqual(orderID))
		assert.Equal(t, 1, s.SequenceIndex())
		assert.Equal(t, int64(7), s.DocumentNumber())
		assert.Equal(t, 15, s.TotalQuantity())
		assert.Nil(t, s.TrackingNumber())
	})

	t.Run("collects errors", func(t *testing.T) {
		_, err := shipment.NewShipment(kernel.UUID{}, kernel.UUID{}, -1, "", 0, " ", "crate", nil, created)

		require.Error(t, err)
		for _, want := range []string{"shipment id", "order id", "sequenceIndex", "documentNumber", "carrier", "packageType", "items"} {
			assert.Contains(t, err.Error(), want)
		}
	})

	t.Run("tracking number", func(t *testing.T) {
		s, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(), 0, "006141410000000015", 1, "UPS",
			shipment.PackageTypeBag, []shipment.Item{item(t, 1, 1)}, created)
		require.NoError(t, err)

		require.ErrorIs(t, s.SetTrackingNumber(" "), errs.ErrValueIsRequired)
		require.NoError(t, s.SetTrackingNumber("1Z999AA10123456784"))

		tn := s.TrackingNumber()
		require.NotNil(t, tn)
		assert.Equal(t, "1Z999AA10123456784", *tn)
	})

	t.Run("zero value", func(t *testing.T) {
		require.ErrorIs(t, (&shipment.Shipment{}).Validate(), shipment.ErrShipmentIsNotConstructed)
	})
}

func TestNewItem(t *testing.T) {
	_, err := shipment.NewItem(1, "SKU", "4006381333931", 0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = shipment.NewItem(0, "SKU", "4006381333931", 1)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestPackageType(t *testing.T) {
	pt, err := shipment.ParsePackageType(" Pallet ")
	require.NoError(t, err)
	assert.Equal(t, shipment.PackageTypePallet, pt)
	assert.Equal(t, "PX", pt.EDICode())
	assert.Equal(t, "CT", shipment.PackageTypeBox.EDICode())

	_, err = shipment.ParsePackageType("crate")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCarrierPolicy(t *testing.T) {
	policy, err := shipment.NewCarrierPolicy([]string{" dhl ", "UPS", "dhl", "", "Deutsche-Post"})
	require.NoError(t, err)

	assert.Equal(t, []string{"DHL", "UPS", "DEUTSCHEPOST"}, policy.Allowed())
	assert.Equal(t, "DHL", policy.Default())

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: "DHL"},
		{raw: "ups", want: "UPS"},
		{raw: "deutsche post", want: "DEUTSCHEPOST"},
		{raw: "fedex", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := policy.Normalize(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = shipment.NewCarrierPolicy([]string{" ", ""})
	require.ErrorIs(t, err, errs.ErrConfiguration)
}
