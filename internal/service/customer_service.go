package service

import (
	"context"
	"fmt"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
)

// historyLimit caps how many orders and conditionals the history view shows.
const historyLimit = 50

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, f dto.CustomerFilter) (*dto.CustomerListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) (*dto.CustomerHistoryResponse, error)
}

type customerService struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	conds     repository.ConditionalRepository
	cache     Cache
	now       func() time.Time
}

func NewCustomerService(
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	conds repository.ConditionalRepository,
	cache Cache,
) CustomerService {
	return &customerService{customers: customers, orders: orders, conds: conds, cache: cache, now: time.Now}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		ID:    uuid.New(),
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		CPF:   req.CPF,
		Notes: req.Notes,
	}
	applyAddress(c, req.Address)
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, dbErr(err, "customer not found")
	}
	s.cache.Invalidate(ctx, infra.CacheCustomers)
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, f dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	key := fmt.Sprintf("%slist:%s:%d:%d", infra.CacheCustomers, f.Search, f.Page, f.Limit)
	var cached dto.CustomerListResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	customers, total, err := s.customers.List(ctx, f)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}
	data := make([]dto.CustomerResponse, len(customers))
	for i := range customers {
		data[i] = toCustomerResponse(&customers[i])
	}
	resp := &dto.CustomerListResponse{
		Data: data, Total: total, Page: f.Page, Limit: f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	s.cache.SetJSON(ctx, key, resp)
	return resp, nil
}

// Update changes only the fields present in the request. Orders and
// conditionals keep the customer snapshot they were created with.
func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.CPF != nil {
		c.CPF = req.CPF
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if req.Address != nil {
		applyAddress(c, *req.Address)
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, dbErr(err, "customer not found")
	}
	s.cache.Invalidate(ctx, infra.CacheCustomers)
	resp := toCustomerResponse(c)
	return &resp, nil
}

// Delete refuses customers that orders or conditionals still point at.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return dbErr(err, "customer not found")
	}
	refs, err := s.customers.CountReferences(ctx, id)
	if err != nil {
		return dbErr(err, "customer not found")
	}
	if refs > 0 {
		return apierror.Conflict(fmt.Sprintf("customer has %d orders or conditionals and cannot be deleted", refs))
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return dbErr(err, "customer not found")
	}
	s.cache.Invalidate(ctx, infra.CacheCustomers)
	return nil
}

func (s *customerService) History(ctx context.Context, id uuid.UUID) (*dto.CustomerHistoryResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}
	orders, err := s.orders.ListByCustomer(ctx, id, historyLimit)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}
	conds, err := s.conds.ListByCustomer(ctx, id, historyLimit)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}

	now := s.now()
	resp := &dto.CustomerHistoryResponse{
		Customer:     toCustomerResponse(c),
		Orders:       make([]dto.OrderResponse, len(orders)),
		Conditionals: make([]dto.ConditionalResponse, len(conds)),
	}
	for i := range orders {
		resp.Orders[i] = toOrderResponse(&orders[i])
	}
	for i := range conds {
		resp.Conditionals[i] = toConditionalResponse(&conds[i], now)
	}
	return resp, nil
}

func applyAddress(c *model.Customer, a dto.Address) {
	c.Street = a.Street
	c.Number = a.Number
	c.Complement = a.Complement
	c.District = a.District
	c.City = a.City
	c.State = a.State
	c.ZipCode = a.ZipCode
}
