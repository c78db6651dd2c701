// Package receipt renders order receipts and the daily sales report as PDF.
package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/report"

	"github.com/phpdave11/gofpdf"
)

// Header is printed at the top of every document.
type Header struct {
	Name  string
	Phone string
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

type doc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDoc(h Header, title string) *doc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	d := &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Arial", "B", 14)
	d.line(8, h.Name, "C")
	pdf.SetFont("Arial", "", 10)
	if h.Phone != "" {
		d.line(5, "Tel. "+h.Phone, "C")
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	d.line(6, title, "C")
	return d
}

func (d *doc) line(height float64, text, align string) {
	d.pdf.CellFormat(0, height, d.tr(text), "", 1, align, false, 0, "")
}

func (d *doc) section(title string) {
	d.pdf.Ln(3)
	d.pdf.SetFont("Arial", "B", 10)
	d.pdf.CellFormat(0, 6, d.tr(title), "B", 1, "L", false, 0, "")
	d.pdf.SetFont("Arial", "", 9)
}

// row prints a label on the left and a value on the right.
func (d *doc) row(label, value string) {
	w, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	usable := w - left - right
	d.pdf.CellFormat(usable*0.7, 5, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(usable*0.3, 5, d.tr(value), "", 1, "R", false, 0, "")
}

func (d *doc) bytes() ([]byte, error) {
	var out bytes.Buffer
	if err := d.pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Order renders the customer receipt of o, times shown in loc.
func Order(o *model.Order, h Header, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	d := newDoc(h, "Receipt #"+shortID(o.ID))
	d.pdf.SetFont("Arial", "", 9)
	d.line(5, strings.ToUpper(string(o.Type)), "C")
	if o.TableNumber != "" {
		d.line(5, "Table "+o.TableNumber, "C")
	}
	if o.Address != "" {
		d.pdf.MultiCell(0, 4, d.tr(o.Address), "", "C", false)
	}
	d.line(5, "Placed: "+o.CreatedAt.In(loc).Format("2006-01-02 15:04"), "C")
	if o.PaidAt != nil {
		d.line(5, "Paid: "+o.PaidAt.In(loc).Format("2006-01-02 15:04"), "C")
	}
	if o.CustomerName != "" {
		d.line(5, "Customer: "+o.CustomerName, "C")
	}

	d.section("Items")
	for _, item := range o.Items {
		d.row(fmt.Sprintf("%dx %s", item.Quantity, item.Name), money(item.Price*float64(item.Quantity)))
	}

	d.section("Totals")
	d.row("Subtotal", money(o.Subtotal))
	if o.DeliveryFee > 0 {
		d.row("Delivery", money(o.DeliveryFee))
	}
	if o.VoucherDiscount > 0 {
		d.row("Voucher "+o.VoucherCode, "-"+money(o.VoucherDiscount))
	}
	d.pdf.SetFont("Arial", "B", 11)
	d.row("Total", money(o.Total))

	d.pdf.Ln(2)
	d.pdf.SetFont("Arial", "", 9)
	d.row("Payment", string(o.PaymentMethod))
	d.row("Status", string(o.PaymentStatus))
	if o.ProcessedBy != "" {
		d.row("Cashier", o.ProcessedBy)
	}
	return d.bytes()
}

// Daily renders the end of day summary.
func Daily(r *report.Daily, h Header, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	d := newDoc(h, "Daily report "+r.Date)

	d.section("Summary")
	d.row("Orders", fmt.Sprint(r.TotalOrders))
	d.row("Completed", fmt.Sprint(r.Completed))
	d.row("Cancelled", fmt.Sprint(r.Cancelled))
	d.row("Revenue", money(r.Revenue))
	d.row("Delivery fees", money(r.DeliveryFees))
	d.row("Voucher discounts", money(r.Discounts))

	if len(r.PaymentMethods) > 0 {
		d.section("Payment methods")
		for _, c := range r.PaymentMethods {
			d.row(c.Key, fmt.Sprint(c.Count))
		}
	}
	if len(r.OrderTypes) > 0 {
		d.section("Order types")
		for _, c := range r.OrderTypes {
			d.row(c.Key, fmt.Sprint(c.Count))
		}
	}
	if len(r.TopItems) > 0 {
		d.section("Top items")
		for _, it := range r.TopItems {
			d.row(fmt.Sprintf("%dx %s", it.Quantity, it.Name), money(it.Revenue))
		}
	}

	d.section("Orders")
	for _, o := range r.Orders {
		d.row(fmt.Sprintf("%s  #%s  %s  %s", o.CreatedAt.In(loc).Format("15:04"), shortID(o.ID), o.Type, o.Status), money(o.Total))
	}
	return d.bytes()
}

// shortID is the last eight characters of an id, as printed on tickets.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// Filename suggests a download name for an order receipt.
func Filename(o *model.Order) string {
	return "receipt-" + shortID(o.ID) + ".pdf"
}
