package services

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
)

// Scanner batch bounds: at most scanLimit transactions per tick, flipped in
// sub-batches of scanBatchSize, each sub-batch its own atomic scope.
const (
	scanLimit     = 100
	scanBatchSize = 50
)

// ReturnWindowScanner periodically flips readyForRetainedEarning on
// transactions whose return window has expired. It is the only concurrent
// writer against the transaction collection besides settlement, which is why
// settlement selection filters on retainedLocked=false.
type ReturnWindowScanner struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	txManager  portsrepo.TxManager
	interval   time.Duration
	logger     *slog.Logger
}

// NewReturnWindowScanner creates a scanner with the given cadence; a
// non-positive interval defaults to 5 minutes.
func NewReturnWindowScanner(ledgerRepo portsrepo.LedgerRepositoryFacade, txManager portsrepo.TxManager, interval time.Duration, logger *slog.Logger) *ReturnWindowScanner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReturnWindowScanner{
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		interval:   interval,
		logger:     logger,
	}
}

// Run blocks, scanning on a fixed ticker until the context is cancelled.
func (s *ReturnWindowScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Return window scanner started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Return window scanner stopped")
			return
		case <-ticker.C:
			if err := s.ScanOnce(ctx); err != nil {
				s.logger.Error("Return window scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ScanOnce performs a single bounded scan.
func (s *ReturnWindowScanner) ScanOnce(ctx context.Context) error {
	now := time.Now().UTC()
	ids, err := s.ledgerRepo.FindReturnWindowExpired(ctx, now, scanLimit)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	flipped := 0
	for start := 0; start < len(ids); start += scanBatchSize {
		end := start + scanBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			return s.ledgerRepo.MarkReadyForRetainedEarning(ctx, batch, now)
		})
		if err != nil {
			return err
		}
		flipped += len(batch)
	}

	s.logger.Info("Return windows expired", slog.Int("transactions", flipped))
	return nil
}
