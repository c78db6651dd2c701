// Package voucher manages store-wide discount codes and the per scope voucher selection
// customers carry into checkout.
package voucher

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/pricing"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Input struct {
	Code  string            `json:"code" validate:"required,max=40"`
	Type  model.VoucherType `json:"type" validate:"required,oneof=percent fixed"`
	Value float64           `json:"value" validate:"gt=0"`
	Min   float64           `json:"min" validate:"gte=0"`
}

type Service struct {
	store     store.Store
	events    events.Publisher
	snapshots snapshot.Marker
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(st store.Store, pub events.Publisher, marker snapshot.Marker, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if marker == nil {
		marker = snapshot.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, events: pub, snapshots: marker, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// NormalizeCode trims and upper-cases a code. Codes compare case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) List(ctx context.Context) ([]model.Voucher, error) {
	list, err := s.store.Vouchers().List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Voucher{}
	}
	return list, nil
}

// Add creates an active voucher.
func (s *Service) Add(ctx context.Context, in Input) (model.Voucher, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return model.Voucher{}, apperr.Validation("Voucher code is required", nil)
	}
	if !in.Type.IsValid() {
		return model.Voucher{}, apperr.Validation("Voucher type must be percent or fixed", nil)
	}
	if in.Value <= 0 || (in.Type == model.VoucherPercent && in.Value > 100) {
		return model.Voucher{}, apperr.Validation("Voucher value out of range", map[string]any{"value": in.Value})
	}
	if in.Min < 0 {
		return model.Voucher{}, apperr.Validation("Minimum order must not be negative", nil)
	}

	v := model.Voucher{Code: code, Type: in.Type, Value: in.Value, Min: in.Min, Active: true, CreatedAt: s.now()}
	if err := s.store.Vouchers().Create(ctx, v); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Voucher{}, apperr.Conflict(apperr.ErrVoucherExists, "Voucher code already exists")
		}
		return model.Voucher{}, err
	}
	s.changed(ctx, v.Code, "created")
	return v, nil
}

// Toggle flips the active flag.
func (s *Service) Toggle(ctx context.Context, code string) (model.Voucher, error) {
	v, err := s.get(ctx, code)
	if err != nil {
		return model.Voucher{}, err
	}
	v.Active = !v.Active
	if err := s.store.Vouchers().Save(ctx, v); err != nil {
		return model.Voucher{}, err
	}
	action := "deactivated"
	if v.Active {
		action = "activated"
	}
	s.changed(ctx, v.Code, action)
	return v, nil
}

// Delete removes a voucher and clears it from every scope that had it selected.
func (s *Service) Delete(ctx context.Context, code string) error {
	code = NormalizeCode(code)
	var cleared []string
	err := s.store.InTx(ctx, func(r store.Repositories) error {
		if err := r.Vouchers().Delete(ctx, code); err != nil {
			return err
		}
		var err error
		cleared, err = r.Scopes().ClearVoucherSelections(ctx, code)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(apperr.ErrVoucherNotFound, "Voucher not found")
	}
	if err != nil {
		return err
	}
	for _, scope := range cleared {
		s.snapshots.MarkDirty(snapshot.SelectedVoucherKey(scope))
	}
	s.changed(ctx, code, "deleted")
	return nil
}

// Applicable lists the vouchers that would discount an order of the given subtotal.
func (s *Service) Applicable(ctx context.Context, subtotal float64) ([]model.Voucher, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.ApplicableVouchers(list, subtotal), nil
}

// Select makes code the scope's voucher for checkout. The voucher must be active and the
// scope's current cart must meet its minimum. An empty code clears the selection.
func (s *Service) Select(ctx context.Context, scope, code string) (*model.Voucher, error) {
	code = NormalizeCode(code)
	if code == "" {
		if err := s.store.Scopes().SelectVoucher(ctx, scope, ""); err != nil {
			return nil, err
		}
		s.snapshots.MarkDirty(snapshot.SelectedVoucherKey(scope))
		return nil, nil
	}

	v, err := s.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !v.Active {
		return nil, apperr.BadRequest(apperr.ErrVoucherInactive, "Voucher is not active")
	}
	cart, err := s.store.Scopes().Cart(ctx, scope)
	if err != nil {
		return nil, err
	}
	if subtotal := CartSubtotal(cart); !pricing.VoucherQualifies(v, subtotal) {
		return nil, apperr.New(apperr.ErrVoucherMinOrderNotMet, "Order does not reach the voucher minimum", http.StatusBadRequest,
			map[string]any{"min": v.Min, "subtotal": subtotal})
	}
	if err := s.store.Scopes().SelectVoucher(ctx, scope, v.Code); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.SelectedVoucherKey(scope))
	return &v, nil
}

// Selected returns the scope's selected voucher, nil when none or when it was removed.
func (s *Service) Selected(ctx context.Context, scope string) (*model.Voucher, error) {
	code, err := s.store.Scopes().SelectedVoucher(ctx, scope)
	if err != nil || code == "" {
		return nil, err
	}
	v, err := s.store.Vouchers().Get(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CartSubtotal sums the cart lines at their cart prices.
func CartSubtotal(cart model.Cart) float64 {
	total := decimal.Zero
	for _, line := range cart.Lines {
		total = total.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.InexactFloat64()
}

func (s *Service) get(ctx context.Context, code string) (model.Voucher, error) {
	v, err := s.store.Vouchers().Get(ctx, NormalizeCode(code))
	if errors.Is(err, store.ErrNotFound) {
		return model.Voucher{}, apperr.NotFound(apperr.ErrVoucherNotFound, "Voucher not found")
	}
	return v, err
}

func (s *Service) changed(ctx context.Context, code, action string) {
	s.snapshots.MarkDirty(snapshot.KeyVouchers)
	e := events.Event{Type: events.VoucherUpdated, Data: map[string]any{"code": code, "action": action}, At: s.now()}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("voucher event publish failed", zap.String("code", code), zap.Error(err))
	}
}
