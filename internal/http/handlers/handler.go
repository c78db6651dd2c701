package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/cart"
	"restaurant-order-service/internal/catalog"
	"restaurant-order-service/internal/config"
	"restaurant-order-service/internal/inventory"
	"restaurant-order-service/internal/media"
	"restaurant-order-service/internal/middleware"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/order"
	"restaurant-order-service/internal/report"
	"restaurant-order-service/internal/voucher"
	"restaurant-order-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Logger    *zap.Logger
	Config    config.Config
	Accounts  *auth.Accounts
	Orders    *order.Manager
	Catalog   *catalog.Service
	Inventory *inventory.Service
	Vouchers  *voucher.Service
	Carts     *cart.Service
	Reports   *report.Service
	Uploads   *media.Uploader
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// actor returns the authenticated caller. Routes behind middleware.Auth always have one.
func actor(r *http.Request) order.Actor {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		return order.Actor{}
	}
	return order.Actor{UserID: ac.UserID, Username: ac.Username, Name: ac.Name, Role: ac.Role}
}

// scope is the storage scope of the caller, guest when anonymous.
func scope(r *http.Request) string {
	if ac, ok := middleware.GetAuthContext(r.Context()); ok {
		return model.StorageScope(ac.Username)
	}
	return model.GuestScope
}

func readPathString(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func readQueryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// decode reads a JSON body into dst and runs its validate tags. It writes the error
// response itself and reports false when the request should stop.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, string(apperr.ErrValidation), "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return true
		}
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			details := map[string]any{}
			for _, fe := range fields {
				details[fe.Field()] = fe.Tag()
			}
			first := fields[0]
			response.ErrorDetails(w, http.StatusBadRequest, string(apperr.ErrValidation),
				fmt.Sprintf("%s is invalid (%s)", first.Field(), first.Tag()), details)
			return false
		}
		response.Error(w, http.StatusBadRequest, string(apperr.ErrValidation), err.Error())
		return false
	}
	return true
}

// writeError translates service errors into the JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperr.As(err); ok {
		response.ErrorDetails(w, appErr.StatusCode, string(appErr.Code), appErr.Message, appErr.Details)
		return
	}
	h.Logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("requestId", middleware.GetRequestID(r.Context())),
		zap.Error(err))
	response.Error(w, http.StatusInternalServerError, string(apperr.ErrInternal), "Something went wrong")
}
