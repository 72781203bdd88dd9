package dto

type ReceiptResponse struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	OrderID       *string `json:"order_id"`
	ConditionalID *string `json:"conditional_id"`
	Status        string  `json:"status"`
	RetryCount    int     `json:"retry_count"`
	LastError     *string `json:"last_error"`
	CreatedAt     string  `json:"created_at"`
}
