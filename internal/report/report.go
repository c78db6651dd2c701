// Package report aggregates orders into the staff, chef, rider and admin dashboards and
// the daily summary.
package report

import (
	"context"
	"math"
	"sort"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"

	"github.com/shopspring/decimal"
)

const (
	historyLimit    = 20
	dashboardLatest = 5
	chefRecent      = 6
	topItemsLimit   = 5
)

type Service struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewService(st store.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: st, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) localNow() time.Time { return s.now().In(s.loc) }

func (s *Service) orders(ctx context.Context, from, to time.Time, statuses ...model.OrderStatus) ([]*model.Order, error) {
	return s.store.Orders().List(ctx, store.OrderFilter{Since: from, Until: to, Statuses: statuses})
}

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type DayCount struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	Sales float64 `json:"sales"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type TopItem struct {
	MenuItemID string  `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

type History struct {
	Period       Period         `json:"period"`
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	TotalOrders  int            `json:"totalOrders"`
	TotalSales   float64        `json:"totalSales"`
	AvgOrders    int            `json:"avgOrders"`
	ServedOrders int            `json:"servedOrders"`
	Orders       []*model.Order `json:"orders"`
}

// History summarises the completed orders placed in the period.
func (s *Service) History(ctx context.Context, p Period) (*History, error) {
	from, to := Window(p, s.localNow())
	completed, err := s.orders(ctx, from, to, model.StatusCompleted)
	if err != nil {
		return nil, err
	}

	h := &History{Period: p, From: from, To: to, TotalOrders: len(completed), Orders: completed}
	h.TotalSales = sumTotals(completed)
	h.AvgOrders = h.TotalOrders
	if p != PeriodDay {
		h.AvgOrders = int(math.Round(float64(h.TotalOrders) / float64(Days(p, from))))
	}
	for _, o := range completed {
		if o.ServedBy != "" {
			h.ServedOrders++
		}
	}
	if len(h.Orders) > historyLimit {
		h.Orders = h.Orders[:historyLimit]
	}
	return h, nil
}

type StaffStats struct {
	MyServed      int        `json:"myServed"`
	MyPending     int        `json:"myPending"`
	MyCompleted   int        `json:"myCompleted"`
	MyTotalSales  float64    `json:"myTotalSales"`
	MyAvg         float64    `json:"myAvg"`
	MyDaily       []DayCount `json:"myDaily"`
	PaymentMix    []Count    `json:"paymentMix"`
	TeamServed    int        `json:"teamServed"`
	TeamPending   int        `json:"teamPending"`
	TeamCompleted int        `json:"teamCompleted"`
	TeamSales     float64    `json:"teamTotalSales"`
	TeamDaily     []DayCount `json:"teamDaily"`
	StaffCount    int        `json:"staffCount"`
	PerStaff      []Count    `json:"perStaff"`
}

// StaffStats reports today's figures for the staff member username and the whole team.
func (s *Service) StaffStats(ctx context.Context, username string) (*StaffStats, error) {
	now := s.localNow()
	today := startOfDay(now)
	weekFrom := today.AddDate(0, 0, -6)
	recent, err := s.orders(ctx, weekFrom, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	st := &StaffStats{}
	var mySales []*model.Order
	var teamSales []*model.Order
	payments := map[string]int{string(model.PaymentCash): 0, string(model.PaymentCard): 0, string(model.PaymentTransfer): 0}
	handled := map[string]int{}
	mine := func(o *model.Order) bool { return o.ServedBy == username || o.ProcessedBy == username }

	for _, o := range recent {
		if o.CreatedAt.Before(today) {
			continue
		}
		switch o.Status {
		case model.StatusServed, model.StatusDelivered:
			st.TeamServed++
			st.TeamPending++
		case model.StatusCompleted:
			st.TeamServed++
			st.TeamCompleted++
			teamSales = append(teamSales, o)
		}
		if o.ServedBy != "" {
			handled[o.ServedBy]++
		}
		if o.ProcessedBy != "" && o.ProcessedBy != o.ServedBy {
			handled[o.ProcessedBy]++
		}

		if !mine(o) {
			continue
		}
		if o.ServedBy == username {
			st.MyServed++
			if o.Status == model.StatusServed {
				st.MyPending++
			}
		}
		if o.Status == model.StatusCompleted && o.ProcessedBy == username {
			st.MyCompleted++
			mySales = append(mySales, o)
			if o.PaymentMethod != "" {
				payments[string(o.PaymentMethod)]++
			}
		}
	}

	st.MyTotalSales = sumTotals(mySales)
	if st.MyCompleted > 0 {
		st.MyAvg = math.Round(st.MyTotalSales / float64(st.MyCompleted))
	}
	st.TeamSales = sumTotals(teamSales)
	st.StaffCount = len(handled)
	st.PerStaff = sortedCounts(handled)
	st.PaymentMix = sortedCounts(payments)

	st.MyDaily = daily(recent, weekFrom, 7, mine, false)
	st.TeamDaily = daily(recent, weekFrom, 7, func(o *model.Order) bool { return o.Status == model.StatusCompleted }, true)
	return st, nil
}

type ChefStats struct {
	Total      int            `json:"total"`
	Done       int            `json:"done"`
	Statuses   []Count        `json:"statuses"`
	Categories []Count        `json:"categories"`
	Recent     []*model.Order `json:"recent"`
}

// ChefStats reports today's kitchen throughput.
func (s *Service) ChefStats(ctx context.Context) (*ChefStats, error) {
	from, to := Window(PeriodDay, s.localNow())
	today, err := s.orders(ctx, from, to)
	if err != nil {
		return nil, err
	}
	menu, err := s.store.Menu().List(ctx)
	if err != nil {
		return nil, err
	}
	category := make(map[string]string, len(menu))
	for _, m := range menu {
		category[m.ID] = string(m.Category)
	}

	cs := &ChefStats{Total: len(today)}
	statuses := map[model.OrderStatus]int{}
	categories := map[string]int{}
	for _, o := range today {
		statuses[o.Status]++
		switch o.Status {
		case model.StatusCompleted, model.StatusReady, model.StatusDelivering:
			cs.Done++
		}
		for _, line := range o.Items {
			c := category[line.MenuItemID]
			if c == "" {
				c = string(model.CategoryOther)
			}
			qty := line.Quantity
			if qty <= 0 {
				qty = 1
			}
			categories[c] += qty
		}
	}
	for _, status := range model.AllStatuses() {
		if n := statuses[status]; n > 0 {
			cs.Statuses = append(cs.Statuses, Count{Key: string(status), Count: n})
		}
	}
	cs.Categories = sortedCounts(categories)

	recent, err := s.store.Orders().List(ctx, store.OrderFilter{Limit: chefRecent})
	if err != nil {
		return nil, err
	}
	cs.Recent = recent
	return cs, nil
}

type RiderStats struct {
	TotalDeliveries int        `json:"totalDeliveries"`
	Earnings        float64    `json:"earnings"`
	QRPercent       int        `json:"qrPercent"`
	CODPercent      int        `json:"codPercent"`
	Daily           []DayCount `json:"daily"`
}

// RiderStats covers every completed delivery of the rider.
func (s *Service) RiderStats(ctx context.Context, riderID string) (*RiderStats, error) {
	done, err := s.store.Orders().List(ctx, store.OrderFilter{
		Statuses: []model.OrderStatus{model.StatusCompleted},
		RiderID:  riderID,
	})
	if err != nil {
		return nil, err
	}

	rs := &RiderStats{TotalDeliveries: len(done)}
	fees := decimal.Zero
	var qr, cod int
	for _, o := range done {
		fees = fees.Add(decimal.NewFromFloat(o.DeliveryFee))
		switch o.PaymentMethod {
		case model.PaymentQR:
			qr++
		case model.PaymentCOD:
			cod++
		}
	}
	rs.Earnings = fees.Round(2).InexactFloat64()
	if qr+cod > 0 {
		rs.QRPercent = int(math.Round(float64(qr) / float64(qr+cod) * 100))
		rs.CODPercent = 100 - rs.QRPercent
	}

	today := startOfDay(s.localNow())
	rs.Daily = daily(done, today.AddDate(0, 0, -6), 7, func(*model.Order) bool { return true }, false)
	return rs, nil
}

type Dashboard struct {
	Period      Period         `json:"period"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	TotalOrders int            `json:"totalOrders"`
	Revenue     float64        `json:"revenue"`
	Latest      []*model.Order `json:"latest"`
	Sales       []Point        `json:"sales"`
	OrderTypes  []Count        `json:"orderTypes"`
	TopItems    []TopItem      `json:"topItems"`
	Chefs       []Count        `json:"chefs"`
	Staff       []Count        `json:"staff"`
	Riders      []Count        `json:"riders"`
}

// Dashboard reports every order placed in the period; revenue counts completed orders.
func (s *Service) Dashboard(ctx context.Context, p Period) (*Dashboard, error) {
	from, to := Window(p, s.localNow())
	all, err := s.orders(ctx, from, to)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Period: p, From: from, To: to, TotalOrders: len(all)}
	var completed []*model.Order
	types := map[string]int{}
	chefs := map[string]int{}
	staff := map[string]int{}
	riders := map[string]int{}
	for _, o := range all {
		types[string(o.Type)]++
		if o.Status == model.StatusCompleted {
			completed = append(completed, o)
		}
		if o.PreparedBy != "" {
			chefs[o.PreparedBy]++
		}
		if o.ServedBy != "" {
			staff[o.ServedBy]++
		}
		if o.ProcessedBy != "" && o.ProcessedBy != o.ServedBy {
			staff[o.ProcessedBy]++
		}
		if o.RiderID != "" {
			riders[o.RiderID]++
		}
	}
	d.Revenue = sumTotals(completed)
	d.Latest = all[:min(len(all), dashboardLatest)]
	d.Sales = salesSeries(p, from, to, completed)
	d.OrderTypes = sortedCounts(types)
	d.TopItems = topItems(all, topItemsLimit)
	d.Chefs = sortedCounts(chefs)
	d.Staff = sortedCounts(staff)
	d.Riders = sortedCounts(riders)
	return d, nil
}

type Daily struct {
	Date           string         `json:"date"`
	TotalOrders    int            `json:"totalOrders"`
	Completed      int            `json:"completed"`
	Cancelled      int            `json:"cancelled"`
	Revenue        float64        `json:"revenue"`
	DeliveryFees   float64        `json:"deliveryFees"`
	Discounts      float64        `json:"discounts"`
	PaymentMethods []Count        `json:"paymentMethods"`
	OrderTypes     []Count        `json:"orderTypes"`
	TopItems       []TopItem      `json:"topItems"`
	Orders         []*model.Order `json:"orders"`
}

// Daily summarises the local calendar day containing day.
func (s *Service) Daily(ctx context.Context, day time.Time) (*Daily, error) {
	from, to := Window(PeriodDay, day.In(s.loc))
	all, err := s.store.Orders().List(ctx, store.OrderFilter{Since: from, Until: to, OldestFirst: true})
	if err != nil {
		return nil, err
	}

	d := &Daily{Date: from.Format("2006-01-02"), TotalOrders: len(all), Orders: all}
	revenue, fees, discounts := decimal.Zero, decimal.Zero, decimal.Zero
	methods := map[string]int{}
	types := map[string]int{}
	for _, o := range all {
		types[string(o.Type)]++
		switch o.Status {
		case model.StatusCancelled:
			d.Cancelled++
		case model.StatusCompleted:
			d.Completed++
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
			fees = fees.Add(decimal.NewFromFloat(o.DeliveryFee))
			discounts = discounts.Add(decimal.NewFromFloat(o.VoucherDiscount))
			methods[string(o.PaymentMethod)]++
		}
	}
	d.Revenue = revenue.Round(2).InexactFloat64()
	d.DeliveryFees = fees.Round(2).InexactFloat64()
	d.Discounts = discounts.Round(2).InexactFloat64()
	d.PaymentMethods = sortedCounts(methods)
	d.OrderTypes = sortedCounts(types)
	d.TopItems = topItems(all, 10)
	return d, nil
}

func sumTotals(orders []*model.Order) float64 {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(decimal.NewFromFloat(o.Total))
	}
	return sum.Round(2).InexactFloat64()
}

// sortedCounts orders by count descending, then key.
func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// daily buckets orders matching keep into n local days starting at from.
func daily(orders []*model.Order, from time.Time, n int, keep func(*model.Order) bool, withSales bool) []DayCount {
	out := make([]DayCount, n)
	sales := make([]decimal.Decimal, n)
	for i := range out {
		out[i].Date = from.AddDate(0, 0, i).Format("2006-01-02")
	}
	for _, o := range orders {
		if !keep(o) {
			continue
		}
		idx := dayIndex(from, o.CreatedAt.In(from.Location()))
		if idx < 0 || idx >= n {
			continue
		}
		out[idx].Count++
		sales[idx] = sales[idx].Add(decimal.NewFromFloat(o.Total))
	}
	if withSales {
		for i := range out {
			out[i].Sales = sales[i].Round(2).InexactFloat64()
		}
	}
	return out
}

// dayIndex counts calendar days from from to t, both in the same location.
func dayIndex(from, t time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// salesSeries is hourly for a day, monthly for a year and daily otherwise.
func salesSeries(p Period, from, to time.Time, completed []*model.Order) []Point {
	var points []Point
	var starts []time.Time
	switch p {
	case PeriodDay:
		for h := 0; h < 24; h++ {
			starts = append(starts, from.Add(time.Duration(h)*time.Hour))
			points = append(points, Point{Label: time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04")})
		}
	case PeriodYear:
		for m := 0; m < 12; m++ {
			start := from.AddDate(0, m, 0)
			starts = append(starts, start)
			points = append(points, Point{Label: start.Format("Jan")})
		}
	default:
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			starts = append(starts, d)
			points = append(points, Point{Label: d.Format("2006-01-02")})
		}
	}

	sums := make([]decimal.Decimal, len(points))
	for _, o := range completed {
		t := o.CreatedAt.In(from.Location())
		idx := sort.Search(len(starts), func(i int) bool { return starts[i].After(t) }) - 1
		if idx < 0 {
			continue
		}
		sums[idx] = sums[idx].Add(decimal.NewFromFloat(o.Total))
	}
	for i := range points {
		points[i].Value = sums[i].Round(2).InexactFloat64()
	}
	return points
}

func topItems(orders []*model.Order, limit int) []TopItem {
	byID := map[string]*TopItem{}
	revenue := map[string]decimal.Decimal{}
	for _, o := range orders {
		if o.Status == model.StatusCancelled {
			continue
		}
		for _, line := range o.Items {
			item, ok := byID[line.MenuItemID]
			if !ok {
				item = &TopItem{MenuItemID: line.MenuItemID, Name: line.Name}
				byID[line.MenuItemID] = item
			}
			item.Quantity += line.Quantity
			revenue[line.MenuItemID] = revenue[line.MenuItemID].Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	out := make([]TopItem, 0, len(byID))
	for id, item := range byID {
		item.Revenue = revenue[id].Round(2).InexactFloat64()
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
