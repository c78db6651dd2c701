package httpapi

import (
	"net/http"

	"restaurant-order-service/internal/config"
	"restaurant-order-service/internal/http/handlers"
	"restaurant-order-service/internal/middleware"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/ws"
	"restaurant-order-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Ping reports whether a backing service is reachable, for /health.
type Ping func(r *http.Request) error

func NewRouter(h *handlers.Handler, logger *zap.Logger, cfg config.Config, wsServer *ws.Server, pings map[string]Ping) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
				"Idempotency-Key",
				"Cache-Control",
			},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", health(pings))

	authed := middleware.Auth(cfg.JWTSecret)
	optional := middleware.OptionalAuth(cfg.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/demo", h.DemoLogin)
		r.Get("/track/{id}", h.OrderTrack)

		r.Group(func(r chi.Router) {
			r.Use(optional)
			r.Get("/menu", h.MenuList)
			r.Get("/menu/{id}", h.MenuDetail)
			r.Get("/sets", h.SetList)
			r.Get("/sets/{id}", h.SetDetail)
			r.Get("/discounts/{target}/{id}", h.DiscountPreview)

			r.Get("/cart", h.CartGet)
			r.Post("/cart/items", h.CartAdd)
			r.Put("/cart/items/{id}", h.CartSetQuantity)
			r.Delete("/cart/items/{id}", h.CartRemove)
			r.Delete("/cart", h.CartClear)

			r.Get("/favorites", h.FavoritesList)
			r.Post("/favorites/{id}", h.FavoriteToggle)

			r.Get("/vouchers", h.VouchersApplicable)
			r.Put("/vouchers/selected", h.VoucherSelect)
			r.Delete("/vouchers/selected", h.VoucherClearSelection)
		})

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Get("/me", h.Me)
			r.Get("/me/orders", h.MyOrders)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderCreate)
				r.Get("/", h.OrderList)
				r.Get("/{id}", h.OrderDetail)
				r.Get("/{id}/receipt.pdf", h.OrderReceipt)
				r.Get("/{id}/tracking-token", h.TrackingToken)
				r.With(middleware.RequireRoles(model.RoleCustomer)).Post("/{id}/reorder", h.OrderReorder)
			})

			r.Route("/kitchen", func(r chi.Router) {
				r.Get("/queue", h.KitchenQueue)
				r.Get("/stats", h.KitchenStats)
				r.Post("/orders/{id}/start", h.KitchenStart)
				r.Post("/orders/{id}/finish", h.KitchenFinish)

				r.Post("/menu", h.MenuCreate)
				r.Put("/menu/{id}", h.MenuUpdate)
				r.Patch("/menu/{id}/availability", h.MenuToggleAvailable)
				r.Delete("/menu/{id}", h.MenuDelete)
				r.Post("/menu/{id}/image", h.MenuUploadImage)
			})

			r.Route("/rider", func(r chi.Router) {
				r.Get("/jobs", h.RiderJobs)
				r.Get("/current", h.RiderCurrent)
				r.Get("/history", h.RiderHistory)
				r.Get("/stats", h.RiderStats)
				r.Post("/orders/{id}/accept", h.RiderAccept)
				r.Post("/orders/{id}/complete", h.RiderComplete)
				r.Put("/orders/{id}/location", h.RiderLocation)
			})

			r.Route("/staff", func(r chi.Router) {
				r.Get("/queues", h.StaffQueues)
				r.Get("/stats", h.StaffStats)
				r.Get("/history", h.History)
				r.Get("/riders", h.StaffRiders)
				r.Post("/orders/{id}/serve", h.StaffServe)
				r.Post("/orders/{id}/payment", h.StaffPayment)
				r.Post("/orders/{id}/confirm-qr", h.StaffConfirmQR)
				r.Post("/orders/{id}/confirm-payment", h.StaffConfirmPayment)
				r.Post("/orders/{id}/assign", h.StaffAssignRider)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", h.InventoryList)
				r.Get("/low-stock", h.InventoryLowStock)
				r.Get("/transactions", h.InventoryTransactions)
				r.Get("/{id}/transactions", h.InventoryTransactions)
				r.Post("/", h.InventoryCreate)
				r.Post("/{id}/adjust", h.InventoryAdjust)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", h.AdminUsersList)
				r.Post("/users", h.AdminUsersCreate)

				r.Get("/vouchers", h.AdminVouchersList)
				r.Post("/vouchers", h.AdminVouchersCreate)
				r.Patch("/vouchers/{code}/toggle", h.AdminVouchersToggle)
				r.Delete("/vouchers/{code}", h.AdminVouchersDelete)

				r.Post("/sets", h.SetCreate)
				r.Put("/sets/{id}", h.SetUpdate)
				r.Delete("/sets/{id}", h.SetDelete)
				r.Post("/sets/{id}/image", h.SetUploadImage)
				r.Put("/discounts/{target}/{id}", h.DiscountSet)
				r.Delete("/discounts/{target}/{id}", h.DiscountClear)

				r.Post("/orders/{id}/cancel", h.OrderCancel)

				r.Get("/reports/dashboard", h.AdminDashboard)
				r.Get("/reports/history", h.History)
				r.Get("/reports/daily", h.AdminDailyReport)
				r.Get("/reports/daily.pdf", h.AdminDailyReportPDF)
			})
		})
	})

	if wsServer != nil {
		r.Get("/ws", wsServer.Subscribe)
		r.Get("/ws/track/{id}", wsServer.Track)
	}

	return r
}

func health(pings map[string]Ping) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := map[string]string{}
		for name, ping := range pings {
			if err := ping(r); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		response.JSON(w, status, map[string]any{"success": status == http.StatusOK, "data": checks})
	}
}
