package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type cartService struct {
	db       repository.Querier
	carts    repository.CartRepository
	products repository.ProductRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(db repository.Querier, carts repository.CartRepository, products repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		db:       db,
		carts:    carts,
		products: products,
		validate: newValidate(),
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// View joins the cart with live product data. Prices here are informational;
// checkout re-reads them inside its transaction.
func (s *cartService) View(ctx context.Context, userID int64) (*model.CartView, error) {
	lines, err := s.carts.ListCartLines(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := &model.CartView{Lines: make([]model.CartViewLine, 0, len(lines)), Subtotal: decimal.Zero}
	for _, line := range lines {
		p, err := s.products.GetProduct(ctx, s.db, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart product: %w", err)
		}
		if p == nil {
			continue
		}
		vl := viewLine(line, p)
		view.Lines = append(view.Lines, vl)
		view.Subtotal = view.Subtotal.Add(vl.Subtotal)
	}

	return view, nil
}

// AddItem adds quantity to the line, creating it when needed. The resulting
// quantity may not exceed current stock.
func (s *cartService) AddItem(ctx context.Context, userID int64, req *model.CartItemRequest) (*model.CartView, error) {
	if req == nil || s.validate.Struct(req) != nil {
		return nil, model.ErrInvalidQuantity
	}

	existing, err := s.carts.GetCartLine(ctx, userID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart line: %w", err)
	}

	quantity := req.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}

	if err := s.setLine(ctx, userID, req.ProductID, quantity); err != nil {
		return nil, err
	}

	return s.View(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*model.CartView, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	existing, err := s.carts.GetCartLine(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart line: %w", err)
	}
	if existing == nil {
		return nil, model.ErrProductNotFound
	}

	if err := s.setLine(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}

	return s.View(ctx, userID)
}

func (s *cartService) setLine(ctx context.Context, userID, productID int64, quantity int) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return model.ErrProductNotFound
	}
	if !p.IsActive {
		return model.ErrProductUnavailable
	}
	if quantity > p.StockQuantity {
		return &model.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: p.StockQuantity,
		}
	}

	if err := s.carts.SetCartLine(ctx, userID, productID, quantity); err != nil {
		return fmt.Errorf("failed to save cart line: %w", err)
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Msg("cart line saved")

	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) (*model.CartView, error) {
	removed, err := s.carts.RemoveCartLine(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}
	if !removed {
		return nil, model.ErrProductNotFound
	}

	return s.View(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID int64) error {
	if _, err := s.carts.ClearCart(ctx, s.db, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func viewLine(line model.CartLine, p *model.Product) model.CartViewLine {
	unit := pricing.DiscountedPrice(p.Price, p.DiscountPercentage)
	return model.CartViewLine{
		ProductID:     line.ProductID,
		ProductName:   p.Name,
		ProductSKU:    p.SKU,
		Quantity:      line.Quantity,
		UnitPrice:     unit,
		Subtotal:      pricing.LineSubtotal(unit, line.Quantity),
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
}
