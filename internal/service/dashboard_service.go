package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/infra"
	"modapos/internal/report"
	"modapos/internal/repository"
)

const topProductsLimit = 10

type DashboardService interface {
	Get(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	reports  repository.ReportRepository
	products repository.ProductRepository
	cache    Cache
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardService(reports repository.ReportRepository, products repository.ProductRepository, cache Cache, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{reports: reports, products: products, cache: cache, loc: loc, now: time.Now}
}

// Get resolves the period in the store timezone, loads the raw rows once and
// derives every chart from them.
func (s *dashboardService) Get(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardResponse, error) {
	now := s.now()
	period, err := report.ResolvePeriod(q.Period, now, q.From, q.To, s.loc)
	if err != nil {
		if errors.Is(err, report.ErrUnknownPeriod) || errors.Is(err, report.ErrInvalidRange) {
			return nil, apierror.Validation(err.Error())
		}
		return nil, err
	}

	key := fmt.Sprintf("%s%s:%d:%d", infra.CacheDashboard, period.Kind, period.From.Unix(), period.To.Unix())
	var cached dto.DashboardResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	orders, err := s.reports.OrdersInRange(ctx, period.From, period.To)
	if err != nil {
		return nil, dbErr(err, "no data")
	}
	conds, err := s.reports.ConditionalsInRange(ctx, period.From, period.To)
	if err != nil {
		return nil, dbErr(err, "no data")
	}
	items, err := s.reports.SoldItemsInRange(ctx, period.From, period.To)
	if err != nil {
		return nil, dbErr(err, "no data")
	}
	low, out, err := s.products.CountAlerts(ctx)
	if err != nil {
		return nil, dbErr(err, "no data")
	}

	g := report.SeriesGranularity(period)
	ag := report.AdaptiveGranularity(period)
	resp := &dto.DashboardResponse{
		Period:       period,
		Timezone:     s.loc.String(),
		Granularity:  g,
		Summary:      report.Summarize(orders, conds, period, now),
		Sales:        report.SalesSeries(orders, period, g, s.loc),
		Payments:     report.PaymentBreakdown(orders, period),
		Conditionals: report.ConditionalActivity(conds, period, g, s.loc, now),
		Adaptive: dto.AdaptiveSeries{
			Granularity: ag,
			Points:      report.SalesSeries(orders, period, ag, s.loc),
		},
		TopProducts:     report.TopProducts(items, topProductsLimit),
		LowStockCount:   low,
		OutOfStockCount: out,
		GeneratedAt:     now.Format(timeLayout),
	}
	s.cache.SetJSON(ctx, key, resp)
	return resp, nil
}
