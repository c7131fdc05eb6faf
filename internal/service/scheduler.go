package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

// Scheduler periodically expires finished contracts and issues monthly rent.
type Scheduler struct {
	contracts ContractInteractor
	invoices  InvoiceInteractor
	interval  time.Duration
	log       *slog.Logger
}

func NewScheduler(contracts ContractInteractor, invoices InvoiceInteractor, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		contracts: contracts,
		invoices:  invoices,
		interval:  interval,
		log:       log,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep expires before billing so a contract ending today is not billed.
func (s *Scheduler) Sweep(ctx context.Context) {
	log := s.log.With(slog.String("op", "service.Scheduler.Sweep"))

	if _, err := s.contracts.ExpireDue(ctx); err != nil {
		log.Error("contract expiry sweep failed", sl.Err(err))
	}
	if _, err := s.invoices.GenerateMonthly(ctx); err != nil {
		log.Error("monthly billing failed", sl.Err(err))
	}
}
