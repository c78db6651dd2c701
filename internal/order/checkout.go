package order

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/pricing"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"go.uber.org/zap"
)

type ItemRequest struct {
	MenuItemID string
	Quantity   int
}

type CheckoutRequest struct {
	Actor Actor
	// Scope selects the cart and voucher selection; see model.StorageScope.
	Scope         string
	OrderType     model.OrderType
	Address       string
	Lat           *float64
	Lng           *float64
	TableNumber   string
	PaymentMethod model.PaymentMethod
	VoucherCode   string
	// Items overrides the scope's cart when non-empty.
	Items          []ItemRequest
	IdempotencyKey string
}

// Checkout turns the caller's cart (or explicit items) into a pending order.
func (m *Manager) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	if req.Scope == "" {
		req.Scope = model.StorageScope(req.Actor.Username)
	}
	if err := validateCheckout(&req); err != nil {
		return nil, err
	}

	id := m.newID()
	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" && m.idem != nil {
		existing, claimed, err := m.idem.Claim(ctx, req.Actor.UserID+":"+key, id)
		if err != nil {
			m.logger.Warn("idempotency claim failed", zap.Error(err))
		} else if !claimed {
			o, err := m.store.Orders().Get(ctx, existing)
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Conflict(apperr.ErrOrderConflict, "A request with this idempotency key is still in progress")
			}
			if err != nil {
				return nil, m.mapStoreErr(err, existing)
			}
			return o, nil
		}
	}

	created, err := m.createOrder(ctx, id, req)
	if err != nil {
		if key != "" && m.idem != nil {
			if relErr := m.idem.Release(ctx, req.Actor.UserID+":"+key); relErr != nil {
				m.logger.Warn("idempotency release failed", zap.Error(relErr))
			}
		}
		return nil, err
	}

	m.snapshots.MarkDirty(snapshot.KeyOrders, snapshot.CartKey(req.Scope))
	m.publish(ctx, events.ForOrder(events.OrderCreated, created, ""))
	m.logger.Info("order created",
		zap.String("orderId", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("tableNumber", created.TableNumber),
		zap.Float64("total", created.Total))
	return created, nil
}

func validateCheckout(req *CheckoutRequest) error {
	if !req.OrderType.IsValid() {
		return apperr.Validation("Unknown order type", map[string]any{"orderType": req.OrderType})
	}
	req.Address = strings.TrimSpace(req.Address)
	req.TableNumber = strings.TrimSpace(req.TableNumber)

	if req.PaymentMethod == "" {
		if req.OrderType == model.OrderTypeDineIn {
			req.PaymentMethod = model.PaymentStaff
		} else {
			req.PaymentMethod = model.PaymentCOD
		}
	}
	if !req.PaymentMethod.IsCheckoutMethod() {
		return apperr.BadRequest(apperr.ErrInvalidPaymentMethod, "Payment method must be qr, cod or staff")
	}

	switch req.OrderType {
	case model.OrderTypeDelivery:
		hasCoords := req.Lat != nil && req.Lng != nil
		if req.Address == "" && !hasCoords {
			return apperr.Validation("Delivery orders need an address or current coordinates", nil)
		}
		req.TableNumber = ""
	case model.OrderTypeDineIn:
		if req.PaymentMethod == model.PaymentCOD {
			return apperr.BadRequest(apperr.ErrInvalidPaymentMethod, "Dine-in orders cannot be paid on delivery, pay staff or by QR")
		}
		if req.TableNumber == "" {
			return apperr.Validation("Table number is required for dine-in orders", nil)
		}
	default:
		req.TableNumber = ""
	}

	for _, item := range req.Items {
		if item.Quantity < 0 {
			return apperr.Validation("Quantity must be positive", map[string]any{"id": item.MenuItemID})
		}
	}
	return nil
}

func (m *Manager) createOrder(ctx context.Context, id string, req CheckoutRequest) (*model.Order, error) {
	var created *model.Order
	err := m.store.InTx(ctx, func(r store.Repositories) error {
		requested := req.Items
		if len(requested) == 0 {
			cart, err := r.Scopes().Cart(ctx, req.Scope)
			if err != nil {
				return err
			}
			for _, line := range cart.Lines {
				requested = append(requested, ItemRequest{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
			}
		}
		if len(requested) == 0 {
			return apperr.BadRequest(apperr.ErrCartEmpty, "Add something to the cart first")
		}

		count, err := r.Orders().Count(ctx)
		if err != nil {
			return err
		}
		if count >= m.cfg.Capacity {
			return apperr.Conflict(apperr.ErrCapacityReached, "The system is full and cannot take new orders")
		}

		lines, err := m.priceLines(ctx, r, requested)
		if err != nil {
			return err
		}

		voucher, err := m.resolveVoucher(ctx, r, req)
		if err != nil {
			return err
		}

		quote := pricing.ComputeQuote(pricing.QuoteInput{
			Lines:       lines,
			OrderType:   req.OrderType,
			DeliveryFee: m.cfg.DeliveryFee,
			Voucher:     voucher,
		})

		now := m.now()
		o := &model.Order{
			ID:              id,
			CustomerID:      req.Actor.UserID,
			CustomerName:    req.Actor.Name,
			Items:           lines,
			Type:            req.OrderType,
			Address:         req.Address,
			TableNumber:     req.TableNumber,
			Lat:             req.Lat,
			Lng:             req.Lng,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   model.InitialPaymentStatus(req.PaymentMethod),
			Status:          model.StatusPending,
			Subtotal:        quote.Subtotal,
			DeliveryFee:     quote.DeliveryFee,
			VoucherCode:     quote.VoucherCode,
			VoucherDiscount: quote.VoucherDiscount,
			Voucher:         quote.Voucher,
			Total:           quote.Total,
			EstimatedTime:   m.cfg.EstimatedPrepMinutes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.Orders().Create(ctx, o); err != nil {
			return err
		}
		if len(req.Items) == 0 {
			if err := r.Scopes().SaveCart(ctx, model.Cart{Scope: req.Scope}); err != nil {
				return err
			}
		}
		created = o
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(apperr.ErrOrderConflict, "Order already exists")
		}
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		m.logger.Error("checkout failed", zap.Error(err))
		return nil, apperr.New(apperr.ErrInternal, "Failed to place order", http.StatusInternalServerError, nil)
	}
	return created, nil
}

// priceLines snapshots the current catalog into order lines, merging repeated items.
func (m *Manager) priceLines(ctx context.Context, r store.Repositories, requested []ItemRequest) ([]model.LineItem, error) {
	lines := make([]model.LineItem, 0, len(requested))
	index := map[string]int{}
	for _, req := range requested {
		qty := req.Quantity
		if qty == 0 {
			qty = 1
		}
		if i, ok := index[req.MenuItemID]; ok {
			lines[i].Quantity += qty
			continue
		}

		item, err := r.Menu().Get(ctx, req.MenuItemID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.ErrMenuItemUnavailable, "A menu item in the cart no longer exists", http.StatusBadRequest, map[string]any{"id": req.MenuItemID})
		}
		if err != nil {
			return nil, err
		}
		if !item.Available {
			return nil, apperr.New(apperr.ErrMenuItemUnavailable, item.Name+" is not available right now", http.StatusBadRequest, map[string]any{"id": item.ID})
		}

		price := item.Price
		if m.cfg.CatalogDiscountsAtCheckout {
			d, err := r.Discounts().Get(ctx, model.DiscountTargetItem, item.ID)
			if err != nil {
				return nil, err
			}
			price = pricing.ItemPrice(*item, d)
		}

		index[item.ID] = len(lines)
		lines = append(lines, model.LineItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      price,
			Quantity:   qty,
			Image:      item.Image,
		})
	}
	return lines, nil
}

// resolveVoucher picks the explicit code or else the scope's selection. A selection that
// no longer exists is ignored, an explicit unknown code is an error.
func (m *Manager) resolveVoucher(ctx context.Context, r store.Repositories, req CheckoutRequest) (*model.Voucher, error) {
	code := strings.ToUpper(strings.TrimSpace(req.VoucherCode))
	explicit := code != ""
	if !explicit {
		selected, err := r.Scopes().SelectedVoucher(ctx, req.Scope)
		if err != nil {
			return nil, err
		}
		code = selected
	}
	if code == "" {
		return nil, nil
	}

	v, err := r.Vouchers().Get(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		if explicit {
			return nil, apperr.NotFound(apperr.ErrVoucherNotFound, "Voucher not found")
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Reorder copies a past order's items into the caller's cart at current menu prices.
// Items that are gone or unavailable are skipped and reported back.
func (m *Manager) Reorder(ctx context.Context, actor Actor, orderID string) (model.Cart, []string, error) {
	scope := model.StorageScope(actor.Username)
	var (
		cart    model.Cart
		skipped []string
	)
	err := m.store.InTx(ctx, func(r store.Repositories) error {
		o, err := r.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if actor.Role == model.RoleCustomer && o.CustomerID != actor.UserID {
			return apperr.Forbidden("You can only reorder your own orders")
		}

		cart, err = r.Scopes().Cart(ctx, scope)
		if err != nil {
			return err
		}
		for _, line := range o.Items {
			item, err := r.Menu().Get(ctx, line.MenuItemID)
			if errors.Is(err, store.ErrNotFound) {
				skipped = append(skipped, line.Name)
				continue
			}
			if err != nil {
				return err
			}
			if !item.Available {
				skipped = append(skipped, item.Name)
				continue
			}
			cart.Lines = mergeCartLine(cart.Lines, model.CartLine{
				MenuItemID: item.ID,
				Name:       item.Name,
				Price:      item.Price,
				Quantity:   line.Quantity,
				Image:      item.Image,
			})
		}
		return r.Scopes().SaveCart(ctx, cart)
	})
	if err != nil {
		return model.Cart{}, nil, m.mapStoreErr(err, orderID)
	}
	m.snapshots.MarkDirty(snapshot.CartKey(scope))
	return cart, skipped, nil
}

func mergeCartLine(lines []model.CartLine, add model.CartLine) []model.CartLine {
	for i := range lines {
		if lines[i].MenuItemID == add.MenuItemID {
			lines[i].Quantity += add.Quantity
			lines[i].Price = add.Price
			return lines
		}
	}
	return append(lines, add)
}
