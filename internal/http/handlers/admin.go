package handlers

import (
	"net/http"
	"strings"
	"time"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/receipt"
	"restaurant-order-service/internal/report"
	"restaurant-order-service/internal/voucher"
	"restaurant-order-service/pkg/response"
)

func (h *Handler) AdminUsersList(w http.ResponseWriter, r *http.Request) {
	role := model.Role(strings.TrimSpace(r.URL.Query().Get("role")))
	if role != "" && !role.IsValid() {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown role")
		return
	}
	users, err := h.Accounts.List(r.Context(), role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, users)
}

// AdminUsersCreate creates a staff, chef, rider or admin account.
func (h *Handler) AdminUsersCreate(w http.ResponseWriter, r *http.Request) {
	var body auth.RegisterInput
	if !h.decode(w, r, &body) {
		return
	}
	u, err := h.Accounts.CreateUser(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": u})
}

func (h *Handler) AdminVouchersList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Vouchers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, list)
}

func (h *Handler) AdminVouchersCreate(w http.ResponseWriter, r *http.Request) {
	var body voucher.Input
	if !h.decode(w, r, &body) {
		return
	}
	v, err := h.Vouchers.Add(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": v})
}

func (h *Handler) AdminVouchersToggle(w http.ResponseWriter, r *http.Request) {
	v, err := h.Vouchers.Toggle(r.Context(), readPathString(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, v)
}

func (h *Handler) AdminVouchersDelete(w http.ResponseWriter, r *http.Request) {
	code := voucher.NormalizeCode(readPathString(r, "code"))
	if err := h.Vouchers.Delete(r.Context(), code); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessMessage(w, http.StatusOK, "Voucher deleted", map[string]any{"code": code})
}

func readPeriod(w http.ResponseWriter, r *http.Request) (report.Period, bool) {
	p, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "period must be day, week, month or year")
		return "", false
	}
	return p, true
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := readPeriod(w, r)
	if !ok {
		return
	}
	d, err := h.Reports.Dashboard(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, d)
}

// History is shared by staff and admin: completed orders of the period.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := readPeriod(w, r)
	if !ok {
		return
	}
	out, err := h.Reports.History(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, out)
}

// readDay parses ?date=YYYY-MM-DD in the report timezone, today when absent.
func (h *Handler) readDay(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	loc := h.Reports.Location()
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return time.Now().In(loc), true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func (h *Handler) AdminDailyReport(w http.ResponseWriter, r *http.Request) {
	day, ok := h.readDay(w, r)
	if !ok {
		return
	}
	d, err := h.Reports.Daily(r.Context(), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, d)
}

func (h *Handler) AdminDailyReportPDF(w http.ResponseWriter, r *http.Request) {
	day, ok := h.readDay(w, r)
	if !ok {
		return
	}
	d, err := h.Reports.Daily(r.Context(), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pdf, err := receipt.Daily(d, h.receiptHeader(), h.Reports.Location())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Bytes(w, "application/pdf", "daily-report-"+d.Date+".pdf", pdf)
}
