package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

type BillingOptions struct {
	DueDay         int
	InitialDueDays int
	GraceDays      int
	CallbackSecret string
}

// PaymentCallback is what the payment gateway posts once a charge settles.
type PaymentCallback struct {
	InvoiceID      uuid.UUID `json:"invoice_id"`
	Status         string    `json:"status"`
	TransactionRef string    `json:"transaction_ref"`
}

const (
	callbackStatusPaid   = "paid"
	callbackStatusFailed = "failed"
)

type InvoiceService struct {
	contracts repository.ContractRepository
	invoices  repository.InvoiceRepository
	events    events.Publisher
	log       *slog.Logger
	opts      BillingOptions
	now       Clock
}

func NewInvoiceService(contracts repository.ContractRepository, invoices repository.InvoiceRepository, publisher events.Publisher, log *slog.Logger, opts BillingOptions) *InvoiceService {
	if log == nil {
		log = slog.Default()
	}
	if opts.DueDay < 1 || opts.DueDay > 28 {
		opts.DueDay = 1
	}
	if opts.InitialDueDays < 0 {
		opts.InitialDueDays = 0
	}
	return &InvoiceService{
		contracts: contracts,
		invoices:  invoices,
		events:    publisher,
		log:       log,
		opts:      opts,
		now:       systemClock,
	}
}

func (s *InvoiceService) Now() time.Time {
	return s.now()
}

// Create issues an ad-hoc invoice from the contract's landlord. Monthly rent
// invoices get the period of their due date so the billing run skips them.
func (s *InvoiceService) Create(ctx context.Context, actor domain.Actor, contractID uuid.UUID, invoiceType domain.InvoiceType, dueDate time.Time, items []domain.InvoiceItem) (*domain.Invoice, error) {
	const op = "service.Invoice.Create"
	log := s.log.With(slog.String("op", op), slog.String("contract_id", contractID.String()))

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrNotContractParty
	}
	if !contract.IsActive() {
		return nil, domain.ErrContractNotActive
	}

	period := ""
	if invoiceType == domain.InvoiceTypeMonthlyRent {
		period = domain.BillingPeriod(dueDate)
	}
	invoice, err := domain.NewInvoice(contract.ID, invoiceType, period, dueDate, items, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, log, contract, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// IssueInitial bills the first month and the deposit for a fresh contract.
func (s *InvoiceService) IssueInitial(ctx context.Context, contract *domain.Contract) (*domain.Invoice, error) {
	const op = "service.Invoice.IssueInitial"
	log := s.log.With(slog.String("op", op), slog.String("contract_id", contract.ID.String()))

	now := s.now()
	due := now.AddDate(0, 0, s.opts.InitialDueDays)
	invoice, err := domain.NewInvoice(contract.ID, domain.InvoiceTypeInitialPayment, "", due, domain.InitialPaymentItems(contract), now)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInvoice) {
			log.Info("nothing to bill on signing")
			return nil, nil
		}
		return nil, err
	}
	if err := s.store(ctx, log, contract, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.partyContract(ctx, actor, invoice.ContractID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) ListByContract(ctx context.Context, actor domain.Actor, contractID uuid.UUID) ([]*domain.Invoice, error) {
	if _, err := s.partyContract(ctx, actor, contractID); err != nil {
		return nil, err
	}
	return s.invoices.ListByContract(ctx, contractID)
}

func (s *InvoiceService) Summary(ctx context.Context, actor domain.Actor, contractID uuid.UUID) (*domain.PaymentSummary, error) {
	invoices, err := s.ListByContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizePayments(contractID, invoices, s.now(), s.opts.GraceDays)
	return &summary, nil
}

// HandlePaymentCallback authenticates a gateway notification and applies it.
// Replays of an already applied callback succeed without changing anything.
func (s *InvoiceService) HandlePaymentCallback(ctx context.Context, payload []byte, signature string) (*domain.Invoice, error) {
	const op = "service.Invoice.HandlePaymentCallback"
	log := s.log.With(slog.String("op", op))

	if !s.verifySignature(payload, signature) {
		log.Warn("rejected payment callback with bad signature")
		return nil, domain.ErrInvalidSignature
	}

	var cb PaymentCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: malformed payment callback", domain.ErrValidation)
	}
	cb.Status = strings.ToLower(strings.TrimSpace(cb.Status))
	if cb.Status != callbackStatusPaid && cb.Status != callbackStatusFailed {
		return nil, domain.ErrInvalidPaymentState
	}
	log = log.With(slog.String("invoice_id", cb.InvoiceID.String()), slog.String("transaction_ref", cb.TransactionRef))

	// One retry covers a callback racing a duplicate delivery of itself.
	for attempt := 0; ; attempt++ {
		invoice, changed, err := s.applyCallback(ctx, cb)
		if errors.Is(err, domain.ErrStaleState) && attempt == 0 {
			continue
		}
		if err != nil {
			log.Warn("payment callback not applied", sl.Err(err))
			return nil, err
		}
		if !changed {
			log.Debug("payment callback already applied")
			return invoice, nil
		}

		log.Info("invoice payment recorded", slog.String("status", string(invoice.Status)))
		eventType := events.InvoicePaid
		if invoice.Status == domain.InvoiceStatusFailed {
			eventType = events.InvoiceFailed
		}
		s.publish(ctx, eventType, invoice, nil)
		return invoice, nil
	}
}

func (s *InvoiceService) applyCallback(ctx context.Context, cb PaymentCallback) (*domain.Invoice, bool, error) {
	invoice, err := s.invoices.GetByID(ctx, cb.InvoiceID)
	if err != nil {
		return nil, false, err
	}

	from := invoice.Status
	var changed bool
	switch cb.Status {
	case callbackStatusPaid:
		changed, err = invoice.MarkPaid(cb.TransactionRef, s.now())
	case callbackStatusFailed:
		changed, err = invoice.MarkFailed(cb.TransactionRef, s.now())
	}
	if err != nil || !changed {
		return invoice, false, err
	}

	if err := s.invoices.UpdateStatus(ctx, invoice, from); err != nil {
		return nil, false, err
	}
	return invoice, true, nil
}

// SignPayload computes the signature the gateway is expected to send.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *InvoiceService) verifySignature(payload []byte, signature string) bool {
	if s.opts.CallbackSecret == "" || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(SignPayload(s.opts.CallbackSecret, payload))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// GenerateMonthly bills the current month's rent for every active contract.
// Rent months run from the start date's anniversary: the first one is covered
// by the initial payment, and a month is billed only if its anniversary falls
// before the end date. Running it twice in a month is harmless.
func (s *InvoiceService) GenerateMonthly(ctx context.Context) (int, error) {
	const op = "service.Invoice.GenerateMonthly"
	log := s.log.With(slog.String("op", op))

	now := s.now()
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	period := domain.BillingPeriod(periodStart)
	due := time.Date(now.Year(), now.Month(), s.opts.DueDay, 0, 0, 0, 0, time.UTC)

	contracts, err := s.contracts.ListActive(ctx)
	if err != nil {
		log.Error("failed to list contracts", sl.Err(err))
		return 0, err
	}

	var (
		created int
		errs    []error
	)
	for _, contract := range contracts {
		start := contract.StartDate.UTC()
		k := (periodStart.Year()-start.Year())*12 + int(periodStart.Month()-start.Month())
		if k < 1 || !start.AddDate(0, k, 0).Before(contract.EndDate) {
			continue
		}

		items := []domain.InvoiceItem{{Description: "monthly rent " + period, Amount: contract.MonthlyRent}}
		invoice, err := domain.NewInvoice(contract.ID, domain.InvoiceTypeMonthlyRent, period, due, items, now)
		if err != nil {
			if !errors.Is(err, domain.ErrEmptyInvoice) {
				errs = append(errs, err)
			}
			continue
		}
		if err := s.store(ctx, log, contract, invoice); err != nil {
			if !errors.Is(err, domain.ErrInvoicePeriodExists) {
				errs = append(errs, err)
			}
			continue
		}
		created++
	}

	if created > 0 {
		log.Info("monthly invoices issued", slog.String("period", period), slog.Int("count", created))
	}
	return created, errors.Join(errs...)
}

func (s *InvoiceService) store(ctx context.Context, log *slog.Logger, contract *domain.Contract, invoice *domain.Invoice) error {
	if err := s.invoices.Create(ctx, invoice); err != nil {
		if !errors.Is(err, domain.ErrInvoicePeriodExists) {
			log.Error("failed to store invoice", sl.Err(err))
		}
		return err
	}
	log.Info("invoice issued",
		slog.String("invoice_id", invoice.ID.String()),
		slog.String("invoice_type", string(invoice.Type)),
		slog.Int64("amount", invoice.Amount),
	)
	s.publishFor(contract, events.InvoiceCreated, invoice)
	return nil
}

func (s *InvoiceService) partyContract(ctx context.Context, actor domain.Actor, contractID uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !contract.IsParty(actor.ID) {
		return nil, domain.ErrNotContractParty
	}
	return contract, nil
}

func (s *InvoiceService) publish(ctx context.Context, t events.Type, invoice *domain.Invoice, contract *domain.Contract) {
	if s.events == nil {
		return
	}
	if contract == nil {
		var err error
		contract, err = s.contracts.GetByID(ctx, invoice.ContractID)
		if err != nil {
			s.log.Warn("invoice event without audience", slog.String("invoice_id", invoice.ID.String()), sl.Err(err))
			s.events.Publish(events.New(t, "invoice", invoice.ID, uuid.Nil, invoicePayload(invoice)))
			return
		}
	}
	s.publishFor(contract, t, invoice)
}

func (s *InvoiceService) publishFor(contract *domain.Contract, t events.Type, invoice *domain.Invoice) {
	if s.events == nil {
		return
	}
	audience := append([]uuid.UUID{contract.LandlordID}, tenantIDs(contract)...)
	s.events.Publish(events.New(t, "invoice", invoice.ID, contract.RoomID, invoicePayload(invoice), audience...))
}

func invoicePayload(invoice *domain.Invoice) map[string]any {
	return map[string]any{
		"contract_id":  invoice.ContractID,
		"invoice_type": invoice.Type,
		"amount":       invoice.Amount,
		"status":       invoice.Status,
	}
}
