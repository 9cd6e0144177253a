package commands_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type packMocks struct {
	orders    *MockOrderRepository
	shipments *MockShipmentRepository
	counter   *MockSerialCounter
	uow       *MockPackingUoW
	factory   *MockPackingUoWFactory
	handler   *commands.PackOrderCommandHandler
	scheme    services.ContainerIDScheme
}

func newPackMocks(t *testing.T) packMocks {
	t.Helper()
	m := packMocks{
		orders:    new(MockOrderRepository),
		shipments: new(MockShipmentRepository),
		counter:   new(MockSerialCounter),
		uow:       new(MockPackingUoW),
		factory:   new(MockPackingUoWFactory),
	}
	m.uow.On("OrderRepository").Return(m.orders).Maybe()
	m.uow.On("ShipmentRepository").Return(m.shipments).Maybe()
	m.uow.On("SerialCounter").Return(m.counter).Maybe()
	m.factory.On("Create").Return(m.uow).Once()

	scheme, err := services.NewContainerIDScheme("0", "0614141")
	require.NoError(t, err)
	m.scheme = scheme

	h, err := commands.NewPackOrderCommandHandler(m.factory, scheme, services.NewPackingEngine(), nil)
	require.NoError(t, err)
	m.handler = h
	return m
}

func (m packMocks) assertExpectations(t *testing.T) {
	m.orders.AssertExpectations(t)
	m.shipments.AssertExpectations(t)
	m.counter.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.factory.AssertExpectations(t)
}

func newPackCommand(t *testing.T, id kernel.UUID) commands.PackOrderCommand {
	t.Helper()
	cmd, err := commands.NewPackOrderCommand(id, 12, true, "DHL", shipment.PackageTypeBox)
	require.NoError(t, err)
	return cmd
}

func TestPackOrderCommandHandler_Handle_Success(t *testing.T) {
	m := newPackMocks(t)
	id := kernel.NewUUID()
	o := mustOrder(id, "PO-7", mustLine(1, "SKU-1", "4006381333931", 3))

	mock.InOrder(
		m.uow.On("Begin", mock.Anything).Return(nil).Once(),
		m.orders.On("GetForUpdate", mock.Anything, id).Return(o, nil).Once(),
		m.shipments.On("ListByOrder", mock.Anything, id).Return([]*shipment.Shipment{}, nil).Once(),
		m.counter.On("Next", mock.Anything, m.scheme.Scope()).Return(int64(1), nil).Once(),
		m.counter.On("Next", mock.Anything, services.DocumentNumberScope).Return(int64(7), nil).Once(),
		m.shipments.On("Add", mock.Anything, mock.AnythingOfType("*shipment.Shipment")).Return(nil).Once(),
		m.orders.On("Update", mock.Anything, mock.MatchedBy(func(o *order.Order) bool { return o.IsPacked() })).Return(nil).Once(),
		m.uow.On("Commit", mock.Anything).Return(nil).Once(),
		m.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	res, err := m.handler.Handle(t.Context(), newPackCommand(t, id))

	require.NoError(t, err)
	assert.True(t, res.Packed)
	require.Len(t, res.Shipments, 1)
	s := res.Shipments[0]
	assert.Equal(t, "006141410000000012", s.ContainerID())
	assert.Equal(t, int64(7), s.DocumentNumber())
	assert.Equal(t, 0, s.SequenceIndex())
	assert.Equal(t, 3, s.TotalQuantity())
	assert.Equal(t, "DHL", s.Carrier())
	assert.True(t, res.Order.IsPacked())
	m.assertExpectations(t)
}

func TestPackOrderCommandHandler_Handle_AlreadyPackedIsNoop(t *testing.T) {
	m := newPackMocks(t)
	id := kernel.NewUUID()
	o := mustOrder(id, "PO-7", mustLine(1, "SKU-1", "4006381333931", 3))
	item, err := shipment.NewItem(1, "SKU-1", "4006381333931", 3)
	require.NoError(t, err)
	existing, err := shipment.NewShipment(kernel.NewUUID(), id, 0, "006141410000000012", 1, "DHL",
		shipment.PackageTypeBox, []shipment.Item{item}, o.OrderedAt())
	require.NoError(t, err)

	mock.InOrder(
		m.uow.On("Begin", mock.Anything).Return(nil).Once(),
		m.orders.On("GetForUpdate", mock.Anything, id).Return(o, nil).Once(),
		m.shipments.On("ListByOrder", mock.Anything, id).Return([]*shipment.Shipment{existing}, nil).Once(),
		m.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	res, err := m.handler.Handle(t.Context(), newPackCommand(t, id))

	require.NoError(t, err)
	assert.False(t, res.Packed)
	assert.Equal(t, []*shipment.Shipment{existing}, res.Shipments)
	m.counter.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assertExpectations(t)
}

func TestPackOrderCommandHandler_Handle_ValidationBeforeAllocation(t *testing.T) {
	m := newPackMocks(t)
	id := kernel.NewUUID()
	o := mustOrder(id, "PO-7", mustLine(1, "", "4006381333931", 3))

	mock.InOrder(
		m.uow.On("Begin", mock.Anything).Return(nil).Once(),
		m.orders.On("GetForUpdate", mock.Anything, id).Return(o, nil).Once(),
		m.shipments.On("ListByOrder", mock.Anything, id).Return([]*shipment.Shipment{}, nil).Once(),
		m.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	_, err := m.handler.Handle(t.Context(), newPackCommand(t, id))

	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "supplierItemId")
	m.counter.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestPackOrderCommandHandler_Handle_CounterError(t *testing.T) {
	m := newPackMocks(t)
	id := kernel.NewUUID()
	o := mustOrder(id, "PO-7", mustLine(1, "SKU-1", "4006381333931", 3))

	mock.InOrder(
		m.uow.On("Begin", mock.Anything).Return(nil).Once(),
		m.orders.On("GetForUpdate", mock.Anything, id).Return(o, nil).Once(),
		m.shipments.On("ListByOrder", mock.Anything, id).Return([]*shipment.Shipment{}, nil).Once(),
		m.counter.On("Next", mock.Anything, m.scheme.Scope()).Return(int64(0), errors.New("connection reset")).Once(),
		m.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	_, err := m.handler.Handle(t.Context(), newPackCommand(t, id))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	m.shipments.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assertExpectations(t)
}

func TestPackOrderCommandHandler_Handle_CommitError(t *testing.T) {
	m := newPackMocks(t)
	id := kernel.NewUUID()
	o := mustOrder(id, "PO-7", mustLine(1, "SKU-1", "4006381333931", 3))

	m.uow.On("Begin", mock.Anything).Return(nil).Once()
	m.orders.On("GetForUpdate", mock.Anything, id).Return(o, nil).Once()
	m.shipments.On("ListByOrder", mock.Anything, id).Return([]*shipment.Shipment{}, nil).Once()
	m.counter.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil).Twice()
	m.shipments.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	m.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	m.uow.On("Commit", mock.Anything).Return(errors.New("commit error")).Once()
	m.uow.On("Rollback", mock.Anything).Return(nil).Once()

	_, err := m.handler.Handle(t.Context(), newPackCommand(t, id))

	require.EqualError(t, err, "commit error")
	m.assertExpectations(t)
}

func TestPackOrderCommandHandler_Handle_BeginError(t *testing.T) {
	m := newPackMocks(t)
	m.uow.On("Begin", mock.Anything).Return(errors.New("begin error")).Once()

	_, err := m.handler.Handle(t.Context(), newPackCommand(t, kernel.NewUUID()))

	require.EqualError(t, err, "begin error")
	m.orders.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestPackOrderCommandHandler_Handle_InvalidCommand(t *testing.T) {
	factory := new(MockPackingUoWFactory)
	scheme, err := services.NewContainerIDScheme("0", "0614141")
	require.NoError(t, err)
	h, err := commands.NewPackOrderCommandHandler(factory, scheme, services.NewPackingEngine(), nil)
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), commands.PackOrderCommand{})

	require.ErrorIs(t, err, commands.ErrPackOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestNewPackOrderCommandHandler_RequiresScheme(t *testing.T) {
	_, err := commands.NewPackOrderCommandHandler(new(MockPackingUoWFactory), services.ContainerIDScheme{}, services.NewPackingEngine(), nil)
	require.ErrorIs(t, err, services.ErrContainerIDSchemeIsNotConstructed)
}
