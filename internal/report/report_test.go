package report

import (
	"testing"
	"time"

	"modapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ── Periods ───────────────────────────────────────────────────────────────────

func TestResolvePeriod_Today(t *testing.T) {
	loc := saoPaulo(t)
	// 02:00Z on Jan 2 is still Jan 1 in São Paulo (UTC-3)
	p, err := ResolvePeriod(PeriodToday, utc("2024-01-02T02:00:00Z"), "", "", loc)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-01-01T03:00:00Z"), p.From.UTC())
	assert.Equal(t, utc("2024-01-02T03:00:00Z"), p.To.UTC())
}

func TestResolvePeriod_Yesterday(t *testing.T) {
	p, err := ResolvePeriod(PeriodYesterday, utc("2024-03-10T12:00:00Z"), "", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-03-09T00:00:00Z"), p.From)
	assert.Equal(t, utc("2024-03-10T00:00:00Z"), p.To)
}

func TestResolvePeriod_WeekStartsMonday(t *testing.T) {
	// 2024-01-07 is a Sunday; its week starts Monday 2024-01-01
	p, err := ResolvePeriod(PeriodWeek, utc("2024-01-07T22:00:00Z"), "", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, p.From.Weekday())
	assert.Equal(t, utc("2024-01-01T00:00:00Z"), p.From)
	assert.Equal(t, utc("2024-01-08T00:00:00Z"), p.To)
}

func TestResolvePeriod_MonthAndYear(t *testing.T) {
	now := utc("2024-02-15T12:00:00Z")
	m, err := ResolvePeriod(PeriodMonth, now, "", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-02-01T00:00:00Z"), m.From)
	assert.Equal(t, utc("2024-03-01T00:00:00Z"), m.To)

	y, err := ResolvePeriod(PeriodYear, now, "", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-01-01T00:00:00Z"), y.From)
	assert.Equal(t, utc("2025-01-01T00:00:00Z"), y.To)
}

func TestResolvePeriod_CustomInclusive(t *testing.T) {
	p, err := ResolvePeriod(PeriodCustom, time.Now(), "2024-01-01", "2024-01-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-02-01T00:00:00Z"), p.To)
}

func TestResolvePeriod_Errors(t *testing.T) {
	_, err := ResolvePeriod("fortnight", time.Now(), "", "", time.UTC)
	assert.ErrorIs(t, err, ErrUnknownPeriod)

	_, err = ResolvePeriod(PeriodCustom, time.Now(), "2024-02-01", "2024-01-01", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ResolvePeriod(PeriodCustom, time.Now(), "01/02/2024", "2024-01-03", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// ── Granularity / buckets ─────────────────────────────────────────────────────

func TestAdaptiveGranularity(t *testing.T) {
	cases := []struct {
		from, to string
		want     Granularity
	}{
		{"2024-01-01", "2024-01-01", Hour},
		{"2024-01-01", "2024-01-02", Day},
		{"2024-01-01", "2024-01-30", Day},  // 30 days
		{"2024-01-01", "2024-01-31", Week}, // 31 days
		{"2024-01-01", "2024-04-29", Week}, // 120 days
		{"2024-01-01", "2024-04-30", Month},
	}
	for _, tc := range cases {
		p, err := ResolvePeriod(PeriodCustom, time.Now(), tc.from, tc.to, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, tc.want, AdaptiveGranularity(p), "%s..%s", tc.from, tc.to)
	}
}

func TestSeriesGranularity(t *testing.T) {
	today, _ := ResolvePeriod(PeriodToday, time.Now(), "", "", time.UTC)
	week, _ := ResolvePeriod(PeriodWeek, time.Now(), "", "", time.UTC)
	assert.Equal(t, Hour, SeriesGranularity(today))
	assert.Equal(t, Day, SeriesGranularity(week))
}

func TestGranularity_DSTDayIsStillOneDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-11-03 falls back: the civil day lasts 25 hours
	fallBack, err := ResolvePeriod(PeriodCustom, time.Now(), "2024-11-03", "2024-11-03", ny)
	require.NoError(t, err)
	require.Equal(t, 25*time.Hour, fallBack.Span())
	assert.Equal(t, Hour, SeriesGranularity(fallBack))
	assert.Equal(t, Hour, AdaptiveGranularity(fallBack))
	assert.Len(t, Buckets(fallBack, Hour, ny), 25)

	// 2024-03-10 springs forward: 23 hours
	springFwd, err := ResolvePeriod(PeriodCustom, time.Now(), "2024-03-10", "2024-03-10", ny)
	require.NoError(t, err)
	assert.Equal(t, Hour, SeriesGranularity(springFwd))

	twoDays, err := ResolvePeriod(PeriodCustom, time.Now(), "2024-11-03", "2024-11-04", ny)
	require.NoError(t, err)
	assert.Equal(t, Day, SeriesGranularity(twoDays))

	// 30 civil days including the 25h one stay daily
	month, err := ResolvePeriod(PeriodCustom, time.Now(), "2024-10-05", "2024-11-03", ny)
	require.NoError(t, err)
	assert.Equal(t, Day, AdaptiveGranularity(month))
}

func TestBuckets_HourlyAlways24(t *testing.T) {
	for _, loc := range []*time.Location{time.UTC, saoPaulo(t)} {
		p, err := ResolvePeriod(PeriodToday, utc("2024-06-15T12:00:00Z"), "", "", loc)
		require.NoError(t, err)
		b := Buckets(p, Hour, loc)
		require.Len(t, b, 24)
		assert.Equal(t, "00:00", Label(b[0], Hour))
		assert.Equal(t, "23:00", Label(b[23], Hour))
	}
}

func TestBuckets_WeekAlignedToMonday(t *testing.T) {
	// Wed 2024-01-03 .. Sat 2024-02-10
	p, err := ResolvePeriod(PeriodCustom, time.Now(), "2024-01-03", "2024-02-10", time.UTC)
	require.NoError(t, err)
	b := Buckets(p, Week, time.UTC)
	require.NotEmpty(t, b)
	assert.Equal(t, utc("2024-01-01T00:00:00Z"), b[0])
	for _, start := range b {
		assert.Equal(t, time.Monday, start.Weekday())
	}
	assert.Len(t, b, 6)
}

func TestBuckets_Monthly(t *testing.T) {
	p, err := ResolvePeriod(PeriodYear, utc("2024-05-05T00:00:00Z"), "", "", time.UTC)
	require.NoError(t, err)
	b := Buckets(p, Month, time.UTC)
	require.Len(t, b, 12)
	assert.Equal(t, "2024-12", Label(b[11], Month))
}

// ── Sales series ──────────────────────────────────────────────────────────────

func TestSalesSeries_TodayHourly(t *testing.T) {
	now := utc("2024-01-01T18:00:00Z")
	p, err := ResolvePeriod(PeriodToday, now, "", "", time.UTC)
	require.NoError(t, err)

	orders := []OrderRow{
		{CreatedAt: utc("2024-01-01T10:00:00Z"), TotalAmount: decimal.NewFromInt(100), PaymentMethod: "pix", Status: model.OrderDelivered},
		{CreatedAt: utc("2024-01-01T14:00:00Z"), TotalAmount: decimal.NewFromInt(50), PaymentMethod: "credit_card", Status: model.OrderDelivered},
	}

	series := SalesSeries(orders, p, SeriesGranularity(p), time.UTC)
	require.Len(t, series, 24)
	for i, pt := range series {
		switch i {
		case 10:
			assert.Equal(t, "10:00", pt.Label)
			assert.True(t, pt.Total.Equal(decimal.NewFromInt(100)))
		case 14:
			assert.Equal(t, "14:00", pt.Label)
			assert.True(t, pt.Total.Equal(decimal.NewFromInt(50)))
		default:
			assert.True(t, pt.Total.IsZero(), "bucket %s", pt.Label)
		}
	}

	s := Summarize(orders, nil, p, now)
	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, s.OrderCount)
	assert.Equal(t, "75", s.AverageTicket.String())
}

func TestSalesSeries_SaoPauloShiftsBuckets(t *testing.T) {
	loc := saoPaulo(t)
	p, err := ResolvePeriod(PeriodToday, utc("2024-01-01T18:00:00Z"), "", "", loc)
	require.NoError(t, err)
	orders := []OrderRow{
		{CreatedAt: utc("2024-01-01T10:00:00Z"), TotalAmount: decimal.NewFromInt(100), Status: model.OrderDelivered},
	}
	series := SalesSeries(orders, p, Hour, loc)
	require.Len(t, series, 24)
	assert.Equal(t, "07:00", series[7].Label)
	assert.True(t, series[7].Total.Equal(decimal.NewFromInt(100)))
}

func TestSalesSeries_IgnoresNonQualifyingAndOutOfRange(t *testing.T) {
	p, _ := ResolvePeriod(PeriodCustom, time.Now(), "2024-01-01", "2024-01-03", time.UTC)
	orders := []OrderRow{
		{CreatedAt: utc("2024-01-01T10:00:00Z"), TotalAmount: decimal.NewFromInt(10), Status: model.OrderConfirmed},
		{CreatedAt: utc("2024-01-02T10:00:00Z"), TotalAmount: decimal.NewFromInt(20), Status: model.OrderCompleted},
		{CreatedAt: utc("2024-01-04T00:00:00Z"), TotalAmount: decimal.NewFromInt(40), Status: model.OrderDelivered},
		{CreatedAt: utc("2024-01-02T11:00:00Z"), TotalAmount: decimal.NewFromInt(5), Status: model.OrderCancelled},
	}
	series := SalesSeries(orders, p, Day, time.UTC)
	require.Len(t, series, 3)
	assert.True(t, series[0].Total.IsZero())
	assert.True(t, series[1].Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, series[1].Count)
	assert.True(t, series[2].Total.IsZero())
}

// ── Payment breakdown ─────────────────────────────────────────────────────────

func TestPaymentBreakdown(t *testing.T) {
	p, _ := ResolvePeriod(PeriodCustom, time.Now(), "2024-01-01", "2024-01-31", time.UTC)
	at := utc("2024-01-10T12:00:00Z")
	orders := []OrderRow{
		{CreatedAt: at, TotalAmount: decimal.NewFromInt(100), PaymentMethod: "pix", Status: model.OrderDelivered},
		{CreatedAt: at, TotalAmount: decimal.NewFromInt(80), PaymentMethod: "pix", Status: model.OrderDelivered},
		{CreatedAt: at, TotalAmount: decimal.NewFromInt(300), PaymentMethod: "credit_card", Status: model.OrderDelivered},
		{CreatedAt: at, TotalAmount: decimal.NewFromInt(999), PaymentMethod: "cash", Status: model.OrderPending},
	}
	got := PaymentBreakdown(orders, p)
	require.Len(t, got, 2)
	assert.Equal(t, "credit_card", got[0].Method)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, "pix", got[1].Method)
	assert.Equal(t, 2, got[1].Count)
	assert.True(t, got[1].Total.Equal(decimal.NewFromInt(180)))
}

// ── Conditionals ──────────────────────────────────────────────────────────────

func TestConditionalActivity(t *testing.T) {
	now := utc("2024-01-10T12:00:00Z")
	p, _ := ResolvePeriod(PeriodCustom, now, "2024-01-01", "2024-01-10", time.UTC)
	conds := []ConditionalRow{
		{CreatedAt: utc("2024-01-02T09:00:00Z"), DueDate: utc("2024-01-05T00:00:00Z"), Status: model.ConditionalActive},
		{CreatedAt: utc("2024-01-02T10:00:00Z"), DueDate: utc("2024-01-20T00:00:00Z"), Status: model.ConditionalActive},
		{CreatedAt: utc("2024-01-03T10:00:00Z"), DueDate: utc("2024-01-20T00:00:00Z"), Status: model.ConditionalOverdue},
		{CreatedAt: utc("2024-01-03T11:00:00Z"), DueDate: utc("2024-01-04T00:00:00Z"), Status: model.ConditionalSold},
		{CreatedAt: utc("2023-12-31T11:00:00Z"), DueDate: utc("2024-01-04T00:00:00Z"), Status: model.ConditionalActive},
	}
	pts := ConditionalActivity(conds, p, SeriesGranularity(p), time.UTC, now)
	require.Len(t, pts, 10)
	assert.Equal(t, 1, pts[1].Active)
	assert.Equal(t, 1, pts[1].Overdue)
	assert.Equal(t, 0, pts[2].Active)
	assert.Equal(t, 1, pts[2].Overdue)

	s := Summarize(nil, conds, p, now)
	assert.Equal(t, 1, s.ActiveConditionals)
	assert.Equal(t, 2, s.OverdueConditionals)
	assert.True(t, s.AverageTicket.IsZero())
}

func TestTopProducts(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	items := []ItemRow{
		{ProductID: a, ProductName: "Blusa", Quantity: 2, TotalPrice: decimal.NewFromInt(100)},
		{ProductID: b, ProductName: "Calça", Quantity: 5, TotalPrice: decimal.NewFromInt(500)},
		{ProductID: a, ProductName: "Blusa", Quantity: 4, TotalPrice: decimal.NewFromInt(200)},
		{ProductID: c, ProductName: "Meia", Quantity: 1, TotalPrice: decimal.NewFromInt(10)},
	}
	top := TopProducts(items, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Blusa", top[0].Name)
	assert.Equal(t, 6, top[0].Quantity)
	assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "Calça", top[1].Name)
}
