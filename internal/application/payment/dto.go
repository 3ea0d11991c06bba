package payment

import (
	"time"

	"github.com/atelier/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Status  string          `json:"status" binding:"required,oneof=PENDING PAID"`
	Type    string          `json:"type" binding:"required,oneof=NORMAL FEE"`
	Notes   string          `json:"notes" binding:"max=500"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	OrderID  *uuid.UUID `form:"order_id"`
	Status   *string    `form:"status"`
	Type     *string    `form:"type"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderBalanceResponse reports the recomputed order ledger alongside the
// payment that changed it
type OrderBalanceResponse struct {
	Payment     PaymentResponse `json:"payment"`
	OrderStatus string          `json:"order_status"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		Status:      p.Status.String(),
		Type:        p.Type.String(),
		PaymentDate: p.PaymentDate,
		Notes:       p.Notes,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
