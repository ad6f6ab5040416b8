// Package scheduler runs the periodic background jobs: portfolio
// reconciliation and currency rate refresh.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
)

// jobTimeout bounds one scheduled pass over all portfolios.
const jobTimeout = 10 * time.Minute

// Scheduler drives periodic reconciliation of every stored portfolio.
type Scheduler struct {
	cron       *cron.Cron
	portfolios service.PortfolioStore
	reconciler *service.Reconciler
	market     *service.MarketService
}

// New creates a Scheduler. Call Start to begin running jobs.
func New(portfolios service.PortfolioStore, reconciler *service.Reconciler, market *service.MarketService) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		portfolios: portfolios,
		reconciler: reconciler,
		market:     market,
	}
}

// Start registers the reconciliation job under the given cron spec and starts
// the scheduler. An empty spec disables scheduling.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		log.Println("Scheduler disabled: empty schedule")
		return nil
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Scheduler started: reconcile %s", spec)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// run executes one scheduled pass: refresh currency rates, then reconcile
// every portfolio. Failures are logged and do not abort the remaining
// portfolios.
func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.market.RefreshRates(ctx); err != nil {
		log.Printf("Failed to refresh currency rates: %v", err)
	}

	portfolios, err := s.portfolios.GetAll()
	if err != nil {
		log.Printf("Failed to list portfolios for reconciliation: %v", err)
		return
	}

	for _, portfolio := range portfolios {
		if err := s.reconciler.ReconcileAll(ctx, portfolio); err != nil {
			log.Printf("Failed to reconcile portfolio %s: %v", portfolio.Name, err)
		}
	}
}
