package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dispatcherMock struct {
	mock.Mock
}

func (m *dispatcherMock) Handle(ctx context.Context, cmd commands.DispatchOrderCommand) ([]commands.ShipmentResult, error) {
	args := m.Called(ctx, cmd)
	results, _ := args.Get(0).([]commands.ShipmentResult)
	return results, args.Error(1)
}

type awaitingReaderMock struct {
	mock.Mock
}

func (m *awaitingReaderMock) Handle(ctx context.Context, q queries.GetOrdersAwaitingDispatchQuery) ([]kernel.UUID, error) {
	args := m.Called(ctx, q)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

type failedReaderMock struct {
	mock.Mock
}

func (m *failedReaderMock) Handle(ctx context.Context, q queries.GetOrdersWithFailedDeliveriesQuery) ([]kernel.UUID, error) {
	args := m.Called(ctx, q)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

func forOrder(id kernel.UUID) any {
	return mock.MatchedBy(func(cmd commands.DispatchOrderCommand) bool {
		return cmd.OrderID().IsEqual(id) && !cmd.Force()
	})
}

var discard = slog.New(slog.DiscardHandler)

func TestDispatchReadyOrdersJob_Run(t *testing.T) {
	ok, pending, broken := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	reader := &awaitingReaderMock{}
	reader.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrdersAwaitingDispatchQuery) bool {
		return q.Limit() == 25
	})).Return([]kernel.UUID{ok, pending, broken}, nil).Once()

	dispatcher := &dispatcherMock{}
	dispatcher.On("Handle", mock.Anything, forOrder(ok)).
		Return([]commands.ShipmentResult{{Status: commands.DeliveryUploaded}, {Status: commands.DeliverySkipped}}, nil).Once()
	dispatcher.On("Handle", mock.Anything, forOrder(pending)).
		Return([]commands.ShipmentResult{{Status: commands.DeliveryUploaded}, {Status: commands.DeliveryError}}, nil).Once()
	dispatcher.On("Handle", mock.Anything, forOrder(broken)).
		Return(nil, errs.NewLineValidationError(1, "gtin", "must not be empty")).Once()

	m := metrics.New()
	job := NewDispatchReadyOrdersJob(reader, dispatcher, "*/5 * * * * *", 25, discard, m)

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SweepReport{Orders: 3, Dispatched: 1, Pending: 1, Failed: 1}, report)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(dispatchReadyOrdersJobName, outcomePartial)), 0)
	reader.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestDispatchReadyOrdersJob_Run_NothingToDo(t *testing.T) {
	reader := &awaitingReaderMock{}
	reader.On("Handle", mock.Anything, mock.Anything).Return([]kernel.UUID{}, nil).Once()
	dispatcher := &dispatcherMock{}
	m := metrics.New()
	job := NewDispatchReadyOrdersJob(reader, dispatcher, "*/5 * * * * *", 25, discard, m)

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, report)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(dispatchReadyOrdersJobName, outcomeOK)), 0)
	dispatcher.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestDispatchReadyOrdersJob_Run_ReaderError(t *testing.T) {
	reader := &awaitingReaderMock{}
	reader.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
	m := metrics.New()
	job := NewDispatchReadyOrdersJob(reader, &dispatcherMock{}, "*/5 * * * * *", 25, discard, m)

	_, err := job.Run(context.Background())

	require.Error(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(dispatchReadyOrdersJobName, outcomeFailed)), 0)
}

func TestRetryFailedDeliveriesJob_Run(t *testing.T) {
	first, second := kernel.NewUUID(), kernel.NewUUID()

	reader := &failedReaderMock{}
	reader.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrdersWithFailedDeliveriesQuery) bool {
		return q.Limit() == 10 && q.StalePending() == 15*time.Minute
	})).Return([]kernel.UUID{first, second}, nil).Once()

	dispatcher := &dispatcherMock{}
	dispatcher.On("Handle", mock.Anything, forOrder(first)).Return(nil, errors.New("connection refused")).Once()
	dispatcher.On("Handle", mock.Anything, forOrder(second)).Return(nil, errors.New("connection refused")).Once()

	m := metrics.New()
	job := NewRetryFailedDeliveriesJob(reader, dispatcher, "0 */5 * * * *", 10, 15*time.Minute, discard, m)

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SweepReport{Orders: 2, Failed: 2}, report)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(retryFailedDeliveriesJobName, outcomeFailed)), 0)
	dispatcher.AssertExpectations(t)
}

func TestSweep_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first, second := kernel.NewUUID(), kernel.NewUUID()

	dispatcher := &dispatcherMock{}
	dispatcher.On("Handle", mock.Anything, forOrder(first)).
		Run(func(mock.Arguments) { cancel() }).
		Return([]commands.ShipmentResult{{Status: commands.DeliveryUploaded}}, nil).Once()

	report := sweep(ctx, "test", []kernel.UUID{first, second}, dispatcher, discard, nil)

	assert.Equal(t, 1, report.Dispatched)
	dispatcher.AssertNotCalled(t, "Handle", mock.Anything, forOrder(second))
}

func TestJobManager_StartAndStop(t *testing.T) {
	reader := &awaitingReaderMock{}
	reader.On("Handle", mock.Anything, mock.Anything).Return([]kernel.UUID{}, nil).Maybe()
	failed := &failedReaderMock{}
	failed.On("Handle", mock.Anything, mock.Anything).Return([]kernel.UUID{}, nil).Maybe()

	jm := NewJobManager(
		NewDispatchReadyOrdersJob(reader, &dispatcherMock{}, "* * * * * *", 10, discard, nil),
		NewRetryFailedDeliveriesJob(failed, &dispatcherMock{}, "* * * * * *", 10, time.Minute, discard, nil),
	)

	require.NoError(t, jm.StartAll())
	jm.StopAll()
}

func TestJobManager_StartAll_InvalidSchedule(t *testing.T) {
	dispatchJob := NewDispatchReadyOrdersJob(&awaitingReaderMock{}, &dispatcherMock{}, "*/5 * * * * *", 10, discard, nil)
	retryJob := NewRetryFailedDeliveriesJob(&failedReaderMock{}, &dispatcherMock{}, "every five minutes", 10, time.Minute, discard, nil)
	jm := NewJobManager(dispatchJob, retryJob)

	err := jm.StartAll()

	require.ErrorContains(t, err, "retry failed deliveries job")
	// the dispatch job was stopped again: a second Stop returns immediately
	dispatchJob.Stop()
}
