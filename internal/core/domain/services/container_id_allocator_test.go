package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSerialCounter struct {
	mock.Mock
}

func (m *MockSerialCounter) Next(ctx context.Context, scope string) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

// memoryCounter mimics the atomic increment of the database counter.
type memoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func (c *memoryCounter) Next(_ context.Context, scope string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]int64{}
	}
	c.values[scope]++
	return c.values[scope], nil
}

func TestNewContainerIDScheme(t *testing.T) {
	t.Run("serial length follows prefix length", func(t *testing.T) {
		scheme, err := services.NewContainerIDScheme("0", "0614141")

		require.NoError(t, err)
		assert.Equal(t, 9, scheme.SerialLength())
		assert.Equal(t, int64(999_999_999), scheme.MaxSerial())
		assert.Equal(t, "sscc:0:0614141", scheme.Scope())
	})

	tests := []struct {
		name      string
		extension string
		prefix    string
		key       string
	}{
		{name: "missing extension digit", extension: "", prefix: "0614141", key: "SSCC_EXTENSION_DIGIT"},
		{name: "letter extension digit", extension: "a", prefix: "0614141", key: "SSCC_EXTENSION_DIGIT"},
		{name: "two extension digits", extension: "12", prefix: "0614141", key: "SSCC_EXTENSION_DIGIT"},
		{name: "non digit prefix", extension: "3", prefix: "06-14141", key: "SSCC_COMPANY_PREFIX"},
		{name: "empty prefix", extension: "3", prefix: "", key: "SSCC_COMPANY_PREFIX"},
		{name: "prefix leaves no serial", extension: "3", prefix: "0614141000000000", key: "SSCC_COMPANY_PREFIX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.NewContainerIDScheme(tt.extension, tt.prefix)

			var cerr *errs.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.key, cerr.Key)
			require.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestContainerIDScheme_Compose(t *testing.T) {
	scheme, err := services.NewContainerIDScheme("0", "0614141")
	require.NoError(t, err)

	t.Run("gs1 reference sscc", func(t *testing.T) {
		id, err := scheme.Compose(123456789)

		require.NoError(t, err)
		assert.Equal(t, "006141411234567890", id)
	})

	t.Run("zero padded serial", func(t *testing.T) {
		id, err := scheme.Compose(1)

		require.NoError(t, err)
		assert.Len(t, id, services.ContainerIDLength)
		assert.Equal(t, "00614141000000001", id[:17])
		assert.True(t, kernel.HasValidCheckDigit(id))
	})

	t.Run("last serial still fits", func(t *testing.T) {
		_, err := scheme.Compose(scheme.MaxSerial())
		require.NoError(t, err)
	})

	t.Run("exhaustion", func(t *testing.T) {
		_, err := scheme.Compose(scheme.MaxSerial() + 1)

		var eerr *errs.ExhaustionError
		require.ErrorAs(t, err, &eerr)
		assert.Equal(t, scheme.Scope(), eerr.Scope)
		assert.Equal(t, scheme.MaxSerial(), eerr.Max)
	})

	t.Run("zero value scheme", func(t *testing.T) {
		_, err := services.ContainerIDScheme{}.Compose(1)
		require.ErrorIs(t, err, services.ErrContainerIDSchemeIsNotConstructed)
	})
}

func TestContainerIDAllocator_AllocateContainerID(t *testing.T) {
	ctx := context.Background()

	t.Run("uses scheme scope", func(t *testing.T) {
		scheme, err := services.NewContainerIDScheme("3", "4012345")
		require.NoError(t, err)
		counter := &MockSerialCounter{}
		counter.On("Next", ctx, "sscc:3:4012345").Return(int64(42), nil).Once()

		allocator, err := services.NewContainerIDAllocator(scheme, counter)
		require.NoError(t, err)

		id, err := allocator.AllocateContainerID(ctx)

		require.NoError(t, err)
		assert.Equal(t, "34012345000000042", id[:17])
		assert.True(t, kernel.HasValidCheckDigit(id))
		counter.AssertExpectations(t)
	})

	t.Run("counter failure", func(t *testing.T) {
		scheme, err := services.NewContainerIDScheme("3", "4012345")
		require.NoError(t, err)
		counter := &MockSerialCounter{}
		boom := errors.New("connection reset")
		counter.On("Next", ctx, mock.Anything).Return(int64(0), boom)

		allocator, err := services.NewContainerIDAllocator(scheme, counter)
		require.NoError(t, err)

		_, err = allocator.AllocateContainerID(ctx)
		require.ErrorIs(t, err, boom)
	})

	t.Run("exhausted space", func(t *testing.T) {
		scheme, err := services.NewContainerIDScheme("9", "123456789012345")
		require.NoError(t, err)
		require.Equal(t, 1, scheme.SerialLength())
		counter := &MockSerialCounter{}
		counter.On("Next", ctx, scheme.Scope()).Return(int64(10), nil)

		allocator, err := services.NewContainerIDAllocator(scheme, counter)
		require.NoError(t, err)

		_, err = allocator.AllocateContainerID(ctx)
		require.ErrorIs(t, err, errs.ErrSerialSpaceExhausted)
	})

	t.Run("concurrent callers get distinct consecutive serials", func(t *testing.T) {
		scheme, err := services.NewContainerIDScheme("0", "0614141")
		require.NoError(t, err)
		allocator, err := services.NewContainerIDAllocator(scheme, &memoryCounter{})
		require.NoError(t, err)

		const n = 100
		ids := make(chan string, n)
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := allocator.AllocateContainerID(ctx)
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[string]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
		for serial := int64(1); serial <= n; serial++ {
			want, err := scheme.Compose(serial)
			require.NoError(t, err)
			assert.True(t, seen[want], "missing serial %d", serial)
		}
	})

	t.Run("requires counter", func(t *testing.T) {
		scheme, err := services.NewContainerIDScheme("0", "0614141")
		require.NoError(t, err)

		_, err = services.NewContainerIDAllocator(scheme, nil)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestContainerIDAllocator_AllocateDocumentNumber(t *testing.T) {
	ctx := context.Background()
	scheme, err := services.NewContainerIDScheme("0", "0614141")
	require.NoError(t, err)

	counter := &MockSerialCounter{}
	counter.On("Next", ctx, services.DocumentNumberScope).Return(int64(7), nil).Once()
	counter.On("Next", ctx, services.DocumentNumberScope).Return(services.MaxDocumentNumber+1, nil).Once()
	allocator, err := services.NewContainerIDAllocator(scheme, counter)
	require.NoError(t, err)

	n, err := allocator.AllocateDocumentNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = allocator.AllocateDocumentNumber(ctx)
	require.ErrorIs(t, err, errs.ErrSerialSpaceExhausted)
}
