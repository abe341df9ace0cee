package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/abgdnv/stockroom/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway is a mock implementation of the persistence.Gateway interface
type mockGateway struct {
	loaded    []inventory.Item
	loadErr   error
	saveErr   error
	saves     int
	lastSaved []inventory.Item
}

// Simulate loading the persisted items
func (m *mockGateway) Load(_ context.Context) ([]inventory.Item, error) {
	return m.loaded, m.loadErr
}

// Simulate saving, remembering what was written
func (m *mockGateway) Save(_ context.Context, items []inventory.Item) error {
	m.saves++
	m.lastSaved = items
	return m.saveErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(gw *mockGateway) *Service {
	return NewService(context.Background(), gw, inventory.DefaultLowStockThreshold, discardLogger())
}

func seed() []inventory.Item {
	return []inventory.Item{
		inventory.NewItem("A", "Apple", 2, 1),
		inventory.NewItem("B", "Banana", 10, 2),
		inventory.NewItem("A", "Avocado", 4, 3),
	}
}

func Test_Service_NewService_Load(t *testing.T) {
	testCases := []struct {
		name     string
		gateway  *mockGateway
		expected []inventory.Item
	}{
		{
			name:     "Success - items loaded",
			gateway:  &mockGateway{loaded: seed()},
			expected: seed(),
		},
		{
			name:     "Cold start - nothing persisted",
			gateway:  &mockGateway{loaded: []inventory.Item{}},
			expected: []inventory.Item{},
		},
		{
			name:     "Load error - degrades to empty",
			gateway:  &mockGateway{loaded: seed(), loadErr: errors.New("disk on fire")},
			expected: []inventory.Item{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			service := newTestService(tc.gateway)
			// then
			assert.Equal(t, tc.expected, service.ListItems(context.Background()))
			assert.Zero(t, tc.gateway.saves)
		})
	}
}

func Test_Service_AddItem(t *testing.T) {
	// given
	gw := &mockGateway{loaded: seed()}
	service := newTestService(gw)
	// when
	item, err := service.AddItem(context.Background(), "A", "Almond", 0, 12.5)
	// then
	require.NoError(t, err)
	assert.Equal(t, inventory.NewItem("A", "Almond", 0, 12.5), item)
	list := service.ListItems(context.Background())
	require.Len(t, list, 4)
	assert.Equal(t, item, list[3])
	assert.Equal(t, 1, gw.saves)
	assert.Equal(t, list, gw.lastSaved)
}

func Test_Service_AddItem_SaveFailureKeepsMutation(t *testing.T) {
	// given
	saveErr := errors.New("permission denied")
	gw := &mockGateway{saveErr: saveErr}
	service := newTestService(gw)
	// when
	_, err := service.AddItem(context.Background(), "X", "Xylophone", 1, 1)
	// then
	assert.ErrorIs(t, err, saveErr)
	assert.Len(t, service.ListItems(context.Background()), 1)
}

func Test_Service_UpdateItem(t *testing.T) {
	testCases := []struct {
		name          string
		id            string
		saveErr       error
		expectFound   bool
		expectSaves   int
		expectError   bool
		expectedItems []inventory.Item
	}{
		{
			name:        "Success - first match updated",
			id:          "A",
			expectFound: true,
			expectSaves: 1,
			expectedItems: []inventory.Item{
				inventory.NewItem("A", "Apple", 99, 0.5),
				inventory.NewItem("B", "Banana", 10, 2),
				inventory.NewItem("A", "Avocado", 4, 3),
			},
		},
		{
			name:          "Not found - no save",
			id:            "Z",
			expectFound:   false,
			expectSaves:   0,
			expectedItems: seed(),
		},
		{
			name:        "Save error - update stays in memory",
			id:          "B",
			saveErr:     errors.New("disk full"),
			expectFound: true,
			expectSaves: 1,
			expectError: true,
			expectedItems: []inventory.Item{
				inventory.NewItem("A", "Apple", 2, 1),
				inventory.NewItem("B", "Banana", 99, 0.5),
				inventory.NewItem("A", "Avocado", 4, 3),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			gw := &mockGateway{loaded: seed(), saveErr: tc.saveErr}
			service := newTestService(gw)
			// when
			found, err := service.UpdateItem(context.Background(), tc.id, 99, 0.5)
			// then
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectFound, found)
			assert.Equal(t, tc.expectSaves, gw.saves)
			assert.Equal(t, tc.expectedItems, service.ListItems(context.Background()))
		})
	}
}

func Test_Service_RemoveItem(t *testing.T) {
	testCases := []struct {
		name        string
		id          string
		expectCount int
		expectSaves int
		expectLen   int
	}{
		{name: "Success - all matches removed", id: "A", expectCount: 2, expectSaves: 1, expectLen: 1},
		{name: "Not found - no save", id: "Z", expectCount: 0, expectSaves: 0, expectLen: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			gw := &mockGateway{loaded: seed()}
			service := newTestService(gw)
			// when
			count, err := service.RemoveItem(context.Background(), tc.id)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectCount, count)
			assert.Equal(t, tc.expectSaves, gw.saves)
			assert.Len(t, service.ListItems(context.Background()), tc.expectLen)
		})
	}
}

func Test_Service_FindItem_And_LowStock(t *testing.T) {
	service := newTestService(&mockGateway{loaded: seed()})

	item, found := service.FindItem(context.Background(), "avocado")
	require.True(t, found)
	assert.Equal(t, inventory.NewItem("A", "Avocado", 4, 3), item)

	_, found = service.FindItem(context.Background(), "cherry")
	assert.False(t, found)

	assert.True(t, service.HasItem(context.Background(), "B"))
	assert.False(t, service.HasItem(context.Background(), "Banana"), "HasItem matches ids only")

	low := service.LowStockReport(context.Background(), service.DefaultThreshold())
	assert.Equal(t, []inventory.Item{seed()[0], seed()[2]}, low)
}

func Test_Service_Shutdown(t *testing.T) {
	// given
	gw := &mockGateway{loaded: seed()}
	service := newTestService(gw)
	// when
	err := service.Shutdown(context.Background())
	// then
	require.NoError(t, err)
	assert.Equal(t, 1, gw.saves)
	assert.Equal(t, seed(), gw.lastSaved)
}
