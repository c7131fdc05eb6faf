package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type InvoiceType string

const (
	InvoiceTypeInitialPayment InvoiceType = "initial_payment"
	InvoiceTypeMonthlyRent    InvoiceType = "monthly_rent"
	InvoiceTypeDeposit        InvoiceType = "deposit"
)

func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTypeInitialPayment, InvoiceTypeMonthlyRent, InvoiceTypeDeposit:
		return true
	}
	return false
}

// InvoiceStatus values. Overdue is derived at read time and never stored.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusFailed  InvoiceStatus = "failed"
)

const periodLayout = "2006-01"

type InvoiceItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type Invoice struct {
	ID         uuid.UUID     `json:"id"`
	ContractID uuid.UUID     `json:"contract_id"`
	Type       InvoiceType   `json:"invoice_type"`
	Period     string        `json:"period,omitempty"`
	Amount     int64         `json:"amount"`
	DueDate    time.Time     `json:"due_date"`
	Status     InvoiceStatus `json:"status"`
	Items      []InvoiceItem `json:"items"`
	PaymentRef string        `json:"payment_ref,omitempty"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ComputeInvoiceTotal is the only way an invoice amount is produced.
func ComputeInvoiceTotal(items []InvoiceItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Amount
	}
	return total
}

// NewInvoice builds a pending invoice whose amount is the sum of its items.
// An invoice with nothing to pay is refused.
func NewInvoice(contractID uuid.UUID, invoiceType InvoiceType, period string, dueDate time.Time, items []InvoiceItem, now time.Time) (*Invoice, error) {
	if !invoiceType.Valid() {
		return nil, ErrInvalidInvoiceType
	}

	cleaned := make([]InvoiceItem, 0, len(items))
	for _, item := range items {
		if item.Amount < 0 {
			return nil, ErrInvalidInvoiceItem
		}
		cleaned = append(cleaned, InvoiceItem{
			Description: strings.TrimSpace(item.Description),
			Amount:      item.Amount,
		})
	}

	total := ComputeInvoiceTotal(cleaned)
	if total == 0 {
		return nil, ErrEmptyInvoice
	}

	now = now.UTC()
	return &Invoice{
		ID:         uuid.New(),
		ContractID: contractID,
		Type:       invoiceType,
		Period:     period,
		Amount:     total,
		DueDate:    dueDate.UTC(),
		Status:     InvoiceStatusPending,
		Items:      cleaned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// InitialPaymentItems is the first month of rent plus the deposit. Charges the
// room does not carry are left out.
func InitialPaymentItems(c *Contract) []InvoiceItem {
	items := make([]InvoiceItem, 0, 2)
	if c.MonthlyRent > 0 {
		items = append(items, InvoiceItem{Description: "first month rent", Amount: c.MonthlyRent})
	}
	if c.Deposit > 0 {
		items = append(items, InvoiceItem{Description: "security deposit", Amount: c.Deposit})
	}
	return items
}

// BillingPeriod formats the month a monthly rent invoice covers.
func BillingPeriod(t time.Time) string {
	return t.UTC().Format(periodLayout)
}

func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// EffectiveStatus folds the due date into the stored status.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status == InvoiceStatusPending && now.After(i.DueDate) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// OverdueDays is the number of whole days an unpaid invoice is past due.
func (i *Invoice) OverdueDays(now time.Time) int {
	if i.IsPaid() || !now.After(i.DueDate) {
		return 0
	}
	return int(now.Sub(i.DueDate) / (24 * time.Hour))
}

// MarkPaid applies a successful gateway callback. A repeated callback with the
// same reference reports no change.
func (i *Invoice) MarkPaid(ref string, now time.Time) (bool, error) {
	if i.IsPaid() {
		if i.PaymentRef == ref {
			return false, nil
		}
		return false, ErrInvoiceAlreadyPaid
	}
	now = now.UTC()
	i.Status = InvoiceStatusPaid
	i.PaymentRef = ref
	i.PaidAt = &now
	i.UpdatedAt = now
	return true, nil
}

// MarkFailed records a rejected payment attempt.
func (i *Invoice) MarkFailed(ref string, now time.Time) (bool, error) {
	switch i.Status {
	case InvoiceStatusPaid:
		return false, ErrInvoiceAlreadyPaid
	case InvoiceStatusFailed:
		return false, nil
	}
	i.Status = InvoiceStatusFailed
	i.PaymentRef = ref
	i.UpdatedAt = now.UTC()
	return true, nil
}

type PaymentStatus string

const (
	PaymentStatusFullyPaid   PaymentStatus = "fully_paid"
	PaymentStatusOutstanding PaymentStatus = "outstanding"
)

// PaymentSummary is derived from a contract's invoices on every read.
type PaymentSummary struct {
	ContractID            uuid.UUID     `json:"contract_id"`
	Status                PaymentStatus `json:"status"`
	TotalInvoiced         int64         `json:"total_invoiced"`
	TotalPaid             int64         `json:"total_paid"`
	Outstanding           int64         `json:"outstanding"`
	OutstandingCount      int           `json:"outstanding_count"`
	OverdueCount          int           `json:"overdue_count"`
	MaxOverdueDays        int           `json:"max_overdue_days"`
	InitialPaymentSettled bool          `json:"initial_payment_settled"`
	InGoodStanding        bool          `json:"in_good_standing"`
}

// SummarizePayments scans invoices. A contract stays in good standing while no
// unpaid invoice is more than graceDays past due.
func SummarizePayments(contractID uuid.UUID, invoices []*Invoice, now time.Time, graceDays int) PaymentSummary {
	summary := PaymentSummary{
		ContractID:     contractID,
		Status:         PaymentStatusFullyPaid,
		InGoodStanding: true,
	}

	hasInitial := false
	initialPaid := true
	for _, inv := range invoices {
		if inv == nil || inv.ContractID != contractID {
			continue
		}
		summary.TotalInvoiced += inv.Amount
		if inv.Type == InvoiceTypeInitialPayment {
			hasInitial = true
			initialPaid = initialPaid && inv.IsPaid()
		}
		if inv.IsPaid() {
			summary.TotalPaid += inv.Amount
			continue
		}

		summary.Status = PaymentStatusOutstanding
		summary.Outstanding += inv.Amount
		summary.OutstandingCount++

		days := inv.OverdueDays(now)
		if now.After(inv.DueDate) {
			summary.OverdueCount++
		}
		if days > summary.MaxOverdueDays {
			summary.MaxOverdueDays = days
		}
		if days > graceDays {
			summary.InGoodStanding = false
		}
	}
	summary.InitialPaymentSettled = !hasInitial || initialPaid

	return summary
}
