package service

import (
	"context"
	"errors"
	"fmt"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, f dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	Alerts(ctx context.Context) (*dto.StockAlertsResponse, error)
	Movements(ctx context.Context, id uuid.UUID, f dto.MovementFilter) (*dto.StockMovementListResponse, error)
}

type productService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	ledger    stockLedger
	cache     Cache
}

func NewProductService(products repository.ProductRepository, movements repository.StockMovementRepository, cache Cache) ProductService {
	return &productService{
		products:  products,
		movements: movements,
		ledger:    stockLedger{products: products, movements: movements},
		cache:     cache,
	}
}

// Create inserts the product with zero stock and books the initial quantity
// through the ledger, so every unit in stock has a movement behind it.
func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := s.ensureSKUFree(ctx, req.SKU, uuid.Nil); err != nil {
		return nil, err
	}

	p := &model.Product{
		ID:        uuid.New(),
		Name:      req.Name,
		SKU:       req.SKU,
		SalePrice: req.SalePrice,
		CostPrice: req.CostPrice,
		MinStock:  req.MinStock,
		Category:  req.Category,
		Brand:     req.Brand,
		Colors:    pq.StringArray(req.Colors),
		Sizes:     pq.StringArray(req.Sizes),
		Status:    model.ProductActive,
		Featured:  req.Featured,
	}
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.products.CreateTx(tx, p); err != nil {
			return err
		}
		if req.Stock == 0 {
			return nil
		}
		_, err := s.ledger.apply(tx, stockChange{
			productID: p.ID,
			name:      p.Name,
			delta:     req.Stock,
			kind:      model.MovementManualAdjust,
			reason:    "initial stock",
		})
		return err
	})
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	p.Stock = req.Stock

	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheDashboard)
	log.Info().Str("product_id", p.ID.String()).Str("sku", p.SKU).Msg("product created")
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	key := infra.CacheProducts + "id:" + id.String()
	var cached dto.ProductResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	resp := toProductResponse(p)
	s.cache.SetJSON(ctx, key, resp)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, f dto.ProductFilter) (*dto.ProductListResponse, error) {
	featured := "any"
	if f.Featured != nil {
		featured = fmt.Sprint(*f.Featured)
	}
	key := fmt.Sprintf("%slist:%s:%s:%s:%s:%s:%t:%d:%d",
		infra.CacheProducts, f.Search, f.Category, f.Brand, f.Status, featured, f.LowStock, f.Page, f.Limit)
	var cached dto.ProductListResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	resp := &dto.ProductListResponse{
		Data:       toProductResponses(products),
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	s.cache.SetJSON(ctx, key, resp)
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}

	if req.SKU != nil && *req.SKU != p.SKU {
		if err := s.ensureSKUFree(ctx, *req.SKU, p.ID); err != nil {
			return nil, err
		}
		p.SKU = *req.SKU
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.SalePrice != nil {
		p.SalePrice = *req.SalePrice
	}
	if req.CostPrice != nil {
		p.CostPrice = req.CostPrice
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.Category != nil {
		p.Category = req.Category
	}
	if req.Brand != nil {
		p.Brand = req.Brand
	}
	if req.Colors != nil {
		p.Colors = pq.StringArray(req.Colors)
	}
	if req.Sizes != nil {
		p.Sizes = pq.StringArray(req.Sizes)
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, dbErr(err, "product not found")
	}
	s.cache.Invalidate(ctx, infra.CacheProducts)
	resp := toProductResponse(p)
	return &resp, nil
}

// Deactivate hides the product from the PDV. History keeps referencing it.
func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return dbErr(err, "product not found")
	}
	if err := s.products.SetStatus(ctx, id, model.ProductInactive); err != nil {
		return dbErr(err, "product not found")
	}
	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheDashboard)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	if p.Status == model.ProductActive {
		return nil, apierror.Conflict("product is already active")
	}
	if err := s.products.SetStatus(ctx, id, model.ProductActive); err != nil {
		return nil, dbErr(err, "product not found")
	}
	p.Status = model.ProductActive
	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheDashboard)
	resp := toProductResponse(p)
	return &resp, nil
}

// AdjustStock applies a signed manual correction. A negative delta larger
// than the current stock is refused with a Conflict.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.Validation("delta must not be zero")
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}

	var after int
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		after, err = s.ledger.apply(tx, stockChange{
			productID: id,
			name:      p.Name,
			delta:     req.Delta,
			kind:      model.MovementManualAdjust,
			reason:    req.Reason,
		})
		return err
	})
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	p.Stock = after

	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheDashboard)
	log.Info().Str("product_id", id.String()).Int("delta", req.Delta).Int("stock", after).Msg("stock adjusted")
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Alerts(ctx context.Context) (*dto.StockAlertsResponse, error) {
	low, out, err := s.products.ListAlerts(ctx)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	return &dto.StockAlertsResponse{LowStock: toProductResponses(low), OutOfStock: toProductResponses(out)}, nil
}

func (s *productService) Movements(ctx context.Context, id uuid.UUID, f dto.MovementFilter) (*dto.StockMovementListResponse, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, dbErr(err, "product not found")
	}
	movements, total, err := s.movements.List(ctx, repository.StockMovementFilter{
		ProductID: &id, Kind: f.Kind, Page: f.Page, Limit: f.Limit,
	})
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	data := make([]dto.StockMovementResponse, len(movements))
	for i := range movements {
		data[i] = toStockMovementResponse(&movements[i])
	}
	return &dto.StockMovementListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *productService) ensureSKUFree(ctx context.Context, sku string, self uuid.UUID) error {
	existing, err := s.products.FindBySKU(ctx, sku)
	if err == nil && existing.ID != self {
		return apierror.Conflict(fmt.Sprintf("sku %s is already in use", sku))
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dbErr(err, "product not found")
	}
	return nil
}
