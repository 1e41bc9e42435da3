package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"detailbook/internal/domain"
	"detailbook/internal/repository"
)

type MockServiceReader struct {
	mock.Mock
}

func (m *MockServiceReader) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceReader) ListActive(ctx context.Context) ([]domain.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func TestGet(t *testing.T) {
	reader := new(MockServiceReader)
	svc := NewService(reader)
	ctx := context.Background()

	reader.On("GetByID", ctx, int64(1)).Return(&domain.Service{ID: 1, Name: "Full Detail", Active: true}, nil)
	reader.On("GetByID", ctx, int64(2)).Return(&domain.Service{ID: 2, Name: "Retired Package", Active: false}, nil)
	reader.On("GetByID", ctx, int64(3)).Return(nil, repository.ErrNotFound)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Full Detail", got.Name)

	// Inactive services are not exposed.
	_, err = svc.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}
