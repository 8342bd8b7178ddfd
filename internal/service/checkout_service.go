package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/promo"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultMaxOrderNumberAttempts bounds order number regeneration.
const DefaultMaxOrderNumberAttempts = 5

// OrderNumberFunc produces a candidate order number for the given time.
type OrderNumberFunc func(now time.Time) string

// NewOrderNumber returns ORD-YYYYMMDD-XXXXXXXX with eight random upper-case
// hex characters.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(fmt.Sprintf("%x", id[:4])))
}

// CheckoutOptions tunes a checkout service.
type CheckoutOptions struct {
	Timeout                time.Duration
	MaxOrderNumberAttempts int
	OrderNumbers           OrderNumberFunc
	Now                    func() time.Time
}

// CheckoutDeps are the collaborators of the checkout service.
type CheckoutDeps struct {
	DB          repository.Querier
	Orders      repository.OrderRepository
	Carts       repository.CartRepository
	Products    repository.ProductRepository
	Users       repository.UserRepository
	Idempotency repository.IdempotencyRepository
	Outbox      repository.OutboxRepository
	Stock       StockReserver
	Pricing     *pricing.Engine
	Promo       promo.Validator
	Payments    payment.Gateway
	Recorder    CheckoutRecorder
}

type checkoutService struct {
	deps     CheckoutDeps
	opts     CheckoutOptions
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(deps CheckoutDeps, opts CheckoutOptions, logger zerolog.Logger) CheckoutService {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Promo == nil {
		deps.Promo = promo.Disabled()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxOrderNumberAttempts < 1 {
		opts.MaxOrderNumberAttempts = DefaultMaxOrderNumberAttempts
	}
	if opts.OrderNumbers == nil {
		opts.OrderNumbers = NewOrderNumber
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &checkoutService{
		deps:     deps,
		opts:     opts,
		validate: newValidate(),
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// pricedLine is a cart line with its price snapshot.
type pricedLine struct {
	line      model.CartLine
	product   *model.Product
	unitPrice decimal.Decimal
}

// Checkout validates the request, then converts the cart inside a single
// transaction. Every failure after validation rolls everything back.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (conf *model.OrderConfirmation, err error) {
	start := time.Now()
	defer func() {
		s.deps.Recorder.ObserveCheckout(checkoutOutcome(conf, err), time.Since(start))
	}()

	log := s.logger.With().Int64("user_id", userID).Logger()

	if req == nil {
		return nil, model.ErrInvalidShippingInfo
	}
	normalizeShipping(&req.Shipping)
	if err := s.validate.Struct(req); err != nil {
		log.Info().Strs("fields", invalidFields(err)).Msg("checkout request rejected")
		return nil, model.ErrInvalidShippingInfo
	}

	promoCode, promoPct, err := s.resolvePromo(ctx, req.PromoCode)
	if err != nil {
		log.Info().Err(err).Msg("promo code rejected")
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		replay, err := s.deps.Idempotency.FindConfirmation(ctx, userID, key)
		if err != nil {
			return nil, s.classify(log, err)
		}
		if replay != nil {
			log.Info().Str("order_number", replay.OrderNumber).Msg("checkout replayed")
			return replay, nil
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	conf, err = s.checkoutTx(txCtx, log, userID, req, key, promoCode, promoPct)
	if errors.Is(err, model.ErrIdempotencyKeyUsed) {
		replay, findErr := s.deps.Idempotency.FindConfirmation(ctx, userID, key)
		if findErr == nil && replay != nil {
			log.Info().Str("order_number", replay.OrderNumber).Msg("concurrent duplicate checkout replayed")
			return replay, nil
		}
		return nil, s.classify(log, errors.Join(err, findErr))
	}
	if err != nil {
		return nil, s.classify(log, err)
	}

	return conf, nil
}

func (s *checkoutService) checkoutTx(
	ctx context.Context,
	log zerolog.Logger,
	userID int64,
	req *model.CheckoutRequest,
	key string,
	promoCode *string,
	promoPct decimal.Decimal,
) (conf *model.OrderConfirmation, err error) {
	tx, err := s.deps.Orders.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	checkoutID := uuid.New()
	log = log.With().Str("checkout_id", checkoutID.String()).Logger()

	if key != "" {
		if err = s.deps.Idempotency.Claim(ctx, tx, userID, key, checkoutID); err != nil {
			return nil, err
		}
	}

	lines, err := s.deps.Carts.LockCartLines(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	priced, err := s.priceLines(ctx, tx, lines)
	if err != nil {
		return nil, err
	}

	totals := s.deps.Pricing.Compute(pricingLines(priced), promoPct)
	if verr := totals.Verify(); verr != nil {
		log.Error().Err(verr).Str("invariant", "pricing_identity").Msg("pricing invariant violated")
		return nil, model.ErrInvariantViolation
	}

	// Ascending product id order keeps concurrent multi-product checkouts
	// from deadlocking on each other's rows.
	sort.Slice(priced, func(i, j int) bool { return priced[i].line.ProductID < priced[j].line.ProductID })
	for _, p := range priced {
		if _, err = s.deps.Stock.Reserve(ctx, tx, checkoutID, p.line.ProductID, p.line.Quantity); err != nil {
			return nil, err
		}
	}

	now := s.opts.Now().UTC()
	order := &model.Order{
		ID:             uuid.New(),
		CheckoutID:     checkoutID,
		UserID:         userID,
		Status:         model.OrderStatusConfirmed,
		PaymentStatus:  model.PaymentStatusPaid,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		ShippingCost:   totals.ShippingCost,
		DiscountAmount: totals.DiscountAmount,
		TotalAmount:    totals.TotalAmount,
		PromoCode:      promoCode,
		Shipping:       req.Shipping,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	order.OrderNumber = s.opts.OrderNumbers(now)
	receipt, err := s.deps.Payments.Charge(ctx, order.OrderNumber, order.TotalAmount)
	if err != nil {
		return nil, err
	}
	order.PaymentID = receipt.PaymentID
	order.PaymentMethod = receipt.Method

	if err = s.insertOrder(ctx, log, tx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(priced))
	for i, p := range priced {
		productID := p.line.ProductID
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: p.product.Name,
			ProductSize: p.product.Size,
			ProductSKU:  p.product.SKU,
			Quantity:    p.line.Quantity,
			UnitPrice:   p.unitPrice,
			Subtotal:    pricing.LineSubtotal(p.unitPrice, p.line.Quantity),
		}
	}
	if err = s.deps.Orders.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, err
	}

	if _, err = s.deps.Carts.ClearCart(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err = s.queueOrderPlaced(ctx, tx, order, len(items)); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Int("line_count", len(items)).
		Msg("order placed")

	return &model.OrderConfirmation{
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		LineCount:     len(items),
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// insertOrder retries with a fresh order number on collision.
func (s *checkoutService) insertOrder(ctx context.Context, log zerolog.Logger, tx pgx.Tx, order *model.Order) error {
	for attempt := 1; ; attempt++ {
		err := s.deps.Orders.CreateOrder(ctx, tx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrOrderNumberTaken) {
			return err
		}
		if attempt >= s.opts.MaxOrderNumberAttempts {
			log.Error().Int("attempts", attempt).Msg("order number space exhausted")
			return model.ErrOrderNumberExhausted
		}
		log.Warn().Str("order_number", order.OrderNumber).Int("attempt", attempt).Msg("order number collision, regenerating")
		order.OrderNumber = s.opts.OrderNumbers(order.CreatedAt)
	}
}

func (s *checkoutService) queueOrderPlaced(ctx context.Context, tx pgx.Tx, order *model.Order, lineCount int) error {
	payload, err := json.Marshal(model.OrderPlacedEvent{
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		LineCount:   lineCount,
		PlacedAt:    order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	return s.deps.Outbox.Insert(ctx, tx, &model.OutboxEvent{
		EventID: uuid.New(),
		Topic:   model.EventOrderPlaced,
		Key:     order.OrderNumber,
		Payload: payload,
	})
}

// priceLines loads each product through q and snapshots its discounted price.
func (s *checkoutService) priceLines(ctx context.Context, q repository.Querier, lines []model.CartLine) ([]pricedLine, error) {
	priced := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		p, err := s.deps.Products.GetProduct(ctx, q, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Available() {
			return nil, model.ErrProductUnavailable
		}
		priced = append(priced, pricedLine{
			line:      line,
			product:   p,
			unitPrice: pricing.DiscountedPrice(p.Price, p.DiscountPercentage),
		})
	}
	return priced, nil
}

func pricingLines(priced []pricedLine) []pricing.Line {
	out := make([]pricing.Line, len(priced))
	for i, p := range priced {
		out[i] = pricing.Line{UnitPrice: p.unitPrice, Quantity: p.line.Quantity}
	}
	return out
}

// resolvePromo returns the normalized code and its discount percent. A nil
// or blank code means no promotion.
func (s *checkoutService) resolvePromo(ctx context.Context, code *string) (*string, decimal.Decimal, error) {
	if code == nil {
		return nil, decimal.Zero, nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil, decimal.Zero, nil
	}
	if err := s.deps.Promo.Validate(ctx, trimmed); err != nil {
		return nil, decimal.Zero, err
	}
	return &trimmed, s.deps.Promo.DiscountPercent(), nil
}

// Preview prices the current cart with live product data.
func (s *checkoutService) Preview(ctx context.Context, userID int64, promoCode *string) (*model.CheckoutPreview, error) {
	_, promoPct, err := s.resolvePromo(ctx, promoCode)
	if err != nil {
		return nil, err
	}

	lines, err := s.deps.Carts.ListCartLines(ctx, s.deps.DB, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	priced, err := s.priceLines(ctx, s.deps.DB, lines)
	if err != nil {
		return nil, err
	}
	totals := s.deps.Pricing.Compute(pricingLines(priced), promoPct)

	preview := &model.CheckoutPreview{
		Lines:          make([]model.CartViewLine, len(priced)),
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		ShippingCost:   totals.ShippingCost,
		DiscountAmount: totals.DiscountAmount,
		TotalAmount:    totals.TotalAmount,
	}
	for i, p := range priced {
		preview.Lines[i] = viewLine(p.line, p.product)
	}

	defaults, err := s.deps.Users.GetShippingDefaults(ctx, userID)
	if err != nil {
		return nil, err
	}
	if defaults != nil {
		preview.Shipping = *defaults
	}

	return preview, nil
}

// classify passes domain errors through and folds infrastructure failures
// that are worth retrying into ErrCheckoutFailed.
func (s *checkoutService) classify(log zerolog.Logger, err error) error {
	var domainErr *model.DomainError
	var stockErr *model.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return err
	case errors.As(err, &domainErr):
		if errors.Is(err, model.ErrInvariantViolation) {
			log.Error().Err(err).Msg("checkout aborted by invariant violation")
		}
		return domainErr
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, model.ErrIdempotencyKeyUsed),
		repository.IsTransient(err):
		log.Warn().Err(err).Msg("checkout failed transiently")
		return fmt.Errorf("%w: %v", model.ErrCheckoutFailed, err)
	default:
		log.Error().Err(err).Msg("checkout failed")
		return fmt.Errorf("checkout failed: %w", err)
	}
}

func checkoutOutcome(conf *model.OrderConfirmation, err error) string {
	if err == nil {
		if conf != nil && conf.Replayed {
			return "replayed"
		}
		return "success"
	}
	if errors.Is(err, model.ErrInsufficientStock) {
		return strings.ToLower(model.ErrCodeInsufficientStock)
	}
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return strings.ToLower(domainErr.Code)
	}
	return "error"
}

func normalizeShipping(s *model.ShippingInfo) {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Phone = strings.TrimSpace(s.Phone)
	s.AddressLine1 = strings.TrimSpace(s.AddressLine1)
	s.AddressLine2 = strings.TrimSpace(s.AddressLine2)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.PostalCode = strings.TrimSpace(s.PostalCode)
}
