package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

const mapsDirectionsURL = "https://www.google.com/maps/dir/?api=1&destination="

// AcceptDelivery claims a ready delivery or takeaway order for the calling rider. Only the
// first rider wins; later riders get ALREADY_ACCEPTED.
func (m *Manager) AcceptDelivery(ctx context.Context, rider Actor, id string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		return nil, m.claim(o, rider.UserID)
	})
}

// AssignRider lets staff hand a ready order to a named rider under the same claim rule.
func (m *Manager) AssignRider(ctx context.Context, staff Actor, id, riderID string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		rider, err := r.Users().Get(ctx, riderID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(apperr.ErrUserNotFound, "Rider not found")
		}
		if err != nil {
			return nil, err
		}
		if rider.Role != model.RoleRider {
			return nil, apperr.Validation("User is not a rider", map[string]any{"riderId": riderID})
		}
		return nil, m.claim(o, rider.ID)
	})
}

func (m *Manager) claim(o *model.Order, riderID string) error {
	if o.RiderID != "" {
		if o.RiderID == riderID {
			return apperr.InvalidState("You are already delivering this order")
		}
		return apperr.Conflict(apperr.ErrAlreadyAccepted, "Already accepted by another rider")
	}
	if !o.Type.UsesRider() {
		return apperr.InvalidState("Dine-in orders are served by staff")
	}
	if err := requireStatus(o, model.StatusReady, "accept"); err != nil {
		return err
	}
	o.Status = model.StatusDelivering
	o.RiderID = riderID
	o.AcceptedAt = stamp(m.now())
	return nil
}

// CompleteDelivery finishes an order; only the rider delivering it may do so.
func (m *Manager) CompleteDelivery(ctx context.Context, rider Actor, id string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if err := requireStatus(o, model.StatusDelivering, "complete"); err != nil {
			return nil, err
		}
		if err := requireRider(o, rider); err != nil {
			return nil, err
		}
		o.Status = model.StatusCompleted
		o.CompletedAt = stamp(m.now())
		return nil, nil
	})
}

func (m *Manager) UpdateRiderLocation(ctx context.Context, rider Actor, id string, lat, lng float64) (*model.Order, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("Coordinates out of range", map[string]any{"lat": lat, "lng": lng})
	}
	return m.apply(ctx, id, events.OrderRiderLocation, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if err := requireStatus(o, model.StatusDelivering, "track"); err != nil {
			return nil, err
		}
		if err := requireRider(o, rider); err != nil {
			return nil, err
		}
		o.RiderLat = &lat
		o.RiderLng = &lng
		return nil, nil
	})
}

func requireRider(o *model.Order, rider Actor) error {
	if rider.Role == model.RoleAdmin {
		return nil
	}
	if o.RiderID != rider.UserID {
		return apperr.New(apperr.ErrNotAssignedRider, "This order is assigned to another rider", http.StatusForbidden, nil)
	}
	return nil
}

// MapsLink builds a Google Maps directions link to the order's destination: coordinates
// when known, otherwise the address. It is empty when the order has neither.
func MapsLink(o *model.Order) string {
	if o.Lat != nil && o.Lng != nil {
		return mapsDirectionsURL + fmt.Sprintf("%s,%s",
			strconv.FormatFloat(*o.Lat, 'f', -1, 64),
			strconv.FormatFloat(*o.Lng, 'f', -1, 64))
	}
	if o.Address != "" {
		return mapsDirectionsURL + strings.ReplaceAll(url.QueryEscape(o.Address), "+", "%20")
	}
	return ""
}
