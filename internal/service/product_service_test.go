package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.Product{
		{ID: 1, Name: "Product 1", SKU: "P1", Price: decimal.NewFromInt(10), IsActive: true},
		{ID: 2, Name: "Product 2", SKU: "P2", Price: decimal.NewFromInt(20), IsActive: true},
	}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
		setupMock      func(*MockProductRepository)
		expectedError  bool
		expectedCount  int
	}{
		{
			name:           "successful retrieval with default limit",
			limit:          0,
			offset:         0,
			expectedLimit:  10,
			expectedOffset: 0,
			setupMock: func(m *MockProductRepository) {
				m.On("GetAll", ctx, 10, 0).Return(testProducts, nil)
			},
			expectedCount: 2,
		},
		{
			name:           "limit exceeds maximum",
			limit:          200,
			offset:         0,
			expectedLimit:  100,
			expectedOffset: 0,
			setupMock: func(m *MockProductRepository) {
				m.On("GetAll", ctx, 100, 0).Return(testProducts, nil)
			},
			expectedCount: 2,
		},
		{
			name:           "negative offset",
			limit:          10,
			offset:         -5,
			expectedLimit:  10,
			expectedOffset: 0,
			setupMock: func(m *MockProductRepository) {
				m.On("GetAll", ctx, 10, 0).Return(testProducts, nil)
			},
			expectedCount: 2,
		},
		{
			name:           "repository error",
			limit:          10,
			offset:         0,
			expectedLimit:  10,
			expectedOffset: 0,
			setupMock: func(m *MockProductRepository) {
				m.On("GetAll", ctx, 10, 0).Return(nil, errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setupMock(mockRepo)

			service := NewProductService(mockRepo, logger)
			products, err := service.GetAll(ctx, tt.limit, tt.offset)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Len(t, products, tt.expectedCount)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	tests := []struct {
		name      string
		productID int64
		setupMock func(*MockProductRepository)
		wantErr   error
		anyErr    bool
	}{
		{
			name:      "active product",
			productID: 1,
			setupMock: func(m *MockProductRepository) {
				m.On("GetByID", ctx, int64(1)).Return(&model.Product{ID: 1, Name: "Kurta", IsActive: true}, nil)
			},
		},
		{
			name:      "inactive product is hidden",
			productID: 2,
			setupMock: func(m *MockProductRepository) {
				m.On("GetByID", ctx, int64(2)).Return(&model.Product{ID: 2, IsActive: false}, nil)
			},
			wantErr: model.ErrProductNotFound,
		},
		{
			name:      "missing product",
			productID: 3,
			setupMock: func(m *MockProductRepository) {
				m.On("GetByID", ctx, int64(3)).Return(nil, nil)
			},
			wantErr: model.ErrProductNotFound,
		},
		{
			name:      "non-positive id",
			productID: 0,
			setupMock: func(*MockProductRepository) {},
			wantErr:   model.ErrProductNotFound,
		},
		{
			name:      "repository error",
			productID: 4,
			setupMock: func(m *MockProductRepository) {
				m.On("GetByID", ctx, int64(4)).Return(nil, errors.New("database error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setupMock(mockRepo)

			service := NewProductService(mockRepo, logger)
			product, err := service.GetByID(ctx, tt.productID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, product)
			case tt.anyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, model.ErrProductNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.productID, product.ID)
			}

			mockRepo.AssertExpectations(t)
			if tt.productID <= 0 {
				mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			}
		})
	}
}
