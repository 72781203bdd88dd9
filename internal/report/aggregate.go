package report

import (
	"sort"
	"time"

	"modapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRow is the slice of an order the aggregations need.
type OrderRow struct {
	CreatedAt     time.Time
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Status        string
}

// ConditionalRow is the slice of a conditional the aggregations need.
type ConditionalRow struct {
	CreatedAt time.Time
	DueDate   time.Time
	Status    string
}

// ItemRow is one sold line of a qualifying order.
type ItemRow struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	TotalPrice  decimal.Decimal
}

// Qualifies reports whether an order counts as revenue.
func Qualifies(status string) bool {
	return status == model.OrderDelivered || status == model.OrderCompleted
}

// QualifyingStatuses lists the statuses Qualifies accepts, for SQL filters.
func QualifyingStatuses() []string {
	return []string{model.OrderDelivered, model.OrderCompleted}
}

type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Label  string          `json:"label"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

// SalesSeries sums qualifying orders per bucket. Every bucket of the period
// is present, zero-valued when nothing matched.
func SalesSeries(orders []OrderRow, p Period, g Granularity, loc *time.Location) []SeriesPoint {
	buckets := Buckets(p, g, loc)
	points := make([]SeriesPoint, len(buckets))
	index := make(map[int64]int, len(buckets))
	for i, b := range buckets {
		points[i] = SeriesPoint{Bucket: b, Label: Label(b, g), Total: decimal.Zero}
		index[b.Unix()] = i
	}
	for _, o := range orders {
		if !Qualifies(o.Status) || !p.Contains(o.CreatedAt) {
			continue
		}
		i, ok := index[Truncate(o.CreatedAt, g, loc).Unix()]
		if !ok {
			continue
		}
		points[i].Total = points[i].Total.Add(o.TotalAmount)
		points[i].Count++
	}
	return points
}

type PaymentSlice struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PaymentBreakdown groups qualifying orders by payment method, largest total
// first.
func PaymentBreakdown(orders []OrderRow, p Period) []PaymentSlice {
	byMethod := make(map[string]*PaymentSlice)
	for _, o := range orders {
		if !Qualifies(o.Status) || !p.Contains(o.CreatedAt) {
			continue
		}
		s, ok := byMethod[o.PaymentMethod]
		if !ok {
			s = &PaymentSlice{Method: o.PaymentMethod, Total: decimal.Zero}
			byMethod[o.PaymentMethod] = s
		}
		s.Count++
		s.Total = s.Total.Add(o.TotalAmount)
	}
	out := make([]PaymentSlice, 0, len(byMethod))
	for _, s := range byMethod {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Method < out[j].Method
	})
	return out
}

type ConditionalPoint struct {
	Bucket  time.Time `json:"bucket"`
	Label   string    `json:"label"`
	Active  int       `json:"active"`
	Overdue int       `json:"overdue"`
}

// ConditionalActivity counts open conditionals per creation bucket, split
// into active and overdue as of now. Sold and returned ones are ignored.
func ConditionalActivity(conds []ConditionalRow, p Period, g Granularity, loc *time.Location, now time.Time) []ConditionalPoint {
	buckets := Buckets(p, g, loc)
	points := make([]ConditionalPoint, len(buckets))
	index := make(map[int64]int, len(buckets))
	for i, b := range buckets {
		points[i] = ConditionalPoint{Bucket: b, Label: Label(b, g)}
		index[b.Unix()] = i
	}
	for _, c := range conds {
		if !p.Contains(c.CreatedAt) {
			continue
		}
		i, ok := index[Truncate(c.CreatedAt, g, loc).Unix()]
		if !ok {
			continue
		}
		switch {
		case model.IsConditionalOverdue(c.Status, c.DueDate, now):
			points[i].Overdue++
		case c.Status == model.ConditionalActive:
			points[i].Active++
		}
	}
	return points
}

type Summary struct {
	Revenue             decimal.Decimal `json:"revenue"`
	OrderCount          int             `json:"order_count"`
	AverageTicket       decimal.Decimal `json:"average_ticket"`
	ActiveConditionals  int             `json:"active_conditionals"`
	OverdueConditionals int             `json:"overdue_conditionals"`
}

// Summarize computes the headline numbers of the period.
func Summarize(orders []OrderRow, conds []ConditionalRow, p Period, now time.Time) Summary {
	s := Summary{Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	for _, o := range orders {
		if !Qualifies(o.Status) || !p.Contains(o.CreatedAt) {
			continue
		}
		s.Revenue = s.Revenue.Add(o.TotalAmount)
		s.OrderCount++
	}
	if s.OrderCount > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
	}
	for _, c := range conds {
		if !p.Contains(c.CreatedAt) {
			continue
		}
		switch {
		case model.IsConditionalOverdue(c.Status, c.DueDate, now):
			s.OverdueConditionals++
		case c.Status == model.ConditionalActive:
			s.ActiveConditionals++
		}
	}
	return s
}

type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopProducts ranks products by quantity sold. Callers pass items of
// qualifying orders only.
func TopProducts(items []ItemRow, limit int) []TopProduct {
	byProduct := make(map[uuid.UUID]*TopProduct)
	for _, it := range items {
		tp, ok := byProduct[it.ProductID]
		if !ok {
			tp = &TopProduct{ProductID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero}
			byProduct[it.ProductID] = tp
		}
		tp.Quantity += it.Quantity
		tp.Revenue = tp.Revenue.Add(it.TotalPrice)
	}
	out := make([]TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
