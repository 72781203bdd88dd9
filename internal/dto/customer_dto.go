package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type Address struct {
	Street     *string `json:"street"     validate:"omitempty,max=120"`
	Number     *string `json:"number"     validate:"omitempty,max=20"`
	Complement *string `json:"complement" validate:"omitempty,max=60"`
	District   *string `json:"district"   validate:"omitempty,max=60"`
	City       *string `json:"city"       validate:"omitempty,max=60"`
	State      *string `json:"state"      validate:"omitempty,len=2"`
	ZipCode    *string `json:"zip_code"   validate:"omitempty,max=9"`
}

type CreateCustomerRequest struct {
	Name  string  `json:"name"  validate:"required,min=2,max=120"`
	Phone string  `json:"phone" validate:"required,min=8,max=20"`
	Email *string `json:"email" validate:"omitempty,email"`
	// CPF digits only or formatted (000.000.000-00)
	CPF     *string `json:"cpf"   validate:"omitempty,min=11,max=14"`
	Address Address `json:"address"`
	Notes   *string `json:"notes" validate:"omitempty,max=500"`
}

type UpdateCustomerRequest struct {
	Name    *string  `json:"name"  validate:"omitempty,min=2,max=120"`
	Phone   *string  `json:"phone" validate:"omitempty,min=8,max=20"`
	Email   *string  `json:"email" validate:"omitempty,email"`
	CPF     *string  `json:"cpf"   validate:"omitempty,min=11,max=14"`
	Address *Address `json:"address"`
	Notes   *string  `json:"notes" validate:"omitempty,max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// CustomerFilter.Search matches name, phone or cpf.
type CustomerFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	CPF       *string `json:"cpf"`
	Address   Address `json:"address"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

type CustomerListResponse struct {
	Data       []CustomerResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type CustomerHistoryResponse struct {
	Customer     CustomerResponse      `json:"customer"`
	Orders       []OrderResponse       `json:"orders"`
	Conditionals []ConditionalResponse `json:"conditionals"`
}
