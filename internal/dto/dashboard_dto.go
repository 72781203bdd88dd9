package dto

import "modapos/internal/report"

// DashboardQuery is bound from GET /v1/dashboard. From/To are only used when
// Period is "custom".
type DashboardQuery struct {
	Period string `form:"period,default=today" validate:"omitempty,oneof=today yesterday week month year custom"`
	From   string `form:"from" validate:"required_if=Period custom,omitempty,datetime=2006-01-02"`
	To     string `form:"to"   validate:"required_if=Period custom,omitempty,datetime=2006-01-02"`
}

type AdaptiveSeries struct {
	Granularity report.Granularity   `json:"granularity"`
	Points      []report.SeriesPoint `json:"points"`
}

type DashboardResponse struct {
	Period          report.Period             `json:"period"`
	Timezone        string                    `json:"timezone"`
	Granularity     report.Granularity        `json:"granularity"`
	Summary         report.Summary            `json:"summary"`
	Sales           []report.SeriesPoint      `json:"sales"`
	Payments        []report.PaymentSlice     `json:"payments"`
	Conditionals    []report.ConditionalPoint `json:"conditionals"`
	Adaptive        AdaptiveSeries            `json:"adaptive"`
	TopProducts     []report.TopProduct       `json:"top_products"`
	LowStockCount   int64                     `json:"low_stock_count"`
	OutOfStockCount int64                     `json:"out_of_stock_count"`
	GeneratedAt     string                    `json:"generated_at"`
}
