package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

// InvoiceResponse reports the status as of now, so an unpaid invoice past its
// due date shows as overdue.
type InvoiceResponse struct {
	ID          uuid.UUID            `json:"id"`
	ContractID  uuid.UUID            `json:"contract_id"`
	InvoiceType domain.InvoiceType   `json:"invoice_type"`
	Period      string               `json:"period,omitempty"`
	Amount      int64                `json:"amount"`
	DueDate     time.Time            `json:"due_date"`
	Status      domain.InvoiceStatus `json:"status"`
	OverdueDays int                  `json:"overdue_days"`
	Items       []domain.InvoiceItem `json:"items"`
	PaymentRef  string               `json:"payment_ref,omitempty"`
	PaidAt      *time.Time           `json:"paid_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func InvoiceToApi(i *domain.Invoice, now time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		ID:          i.ID,
		ContractID:  i.ContractID,
		InvoiceType: i.Type,
		Period:      i.Period,
		Amount:      i.Amount,
		DueDate:     i.DueDate,
		Status:      i.EffectiveStatus(now),
		OverdueDays: i.OverdueDays(now),
		Items:       i.Items,
		PaymentRef:  i.PaymentRef,
		PaidAt:      i.PaidAt,
		CreatedAt:   i.CreatedAt,
	}
}

func InvoicesToApi(invoices []*domain.Invoice, now time.Time) []*InvoiceResponse {
	res := make([]*InvoiceResponse, 0, len(invoices))
	for _, i := range invoices {
		res = append(res, InvoiceToApi(i, now))
	}
	return res
}
