package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
	"github.com/crestpeak/hrfin_backend/internal/utils/accounting"
)

// systemActor stamps audit fields on engine-originated writes.
const systemActor = "ledger-engine"

// postingService persists posting events and propagates balance deltas.
type postingService struct {
	ruleEngine  portssvc.RuleEngineSvcFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	txManager   portsrepo.TxManager
}

// NewPostingService creates a new posting service.
func NewPostingService(ruleEngine portssvc.RuleEngineSvcFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, txManager portsrepo.TxManager) portssvc.PostingSvcFacade {
	return &postingService{
		ruleEngine:  ruleEngine,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		txManager:   txManager,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// Post persists one transaction and applies every line's signed balance
// delta inside a single atomic scope. Tracking-only NONE-side lines are
// excluded from the persisted document but still move balances. Lines that
// target a field-line instance propagate their delta to the owning summary.
func (s *postingService) Post(ctx context.Context, transactionType string, lines []domain.Line, description string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: posting requires at least one line", apperrors.ErrValidation)
	}

	persisted := make([]domain.Line, 0, len(lines))
	for _, l := range lines {
		if l.Side != domain.None {
			persisted = append(persisted, l)
		}
	}

	summaryDeltas := make(map[int64]decimal.Decimal)
	instanceDeltas := make(map[int64]decimal.Decimal)
	for _, l := range lines {
		delta := accounting.SignedDelta(l)
		if l.InstanceID != nil {
			instanceDeltas[*l.InstanceID] = instanceDeltas[*l.InstanceID].Add(delta)
		}
		// Instance deltas mirror into the owning summary's ending balance.
		summaryDeltas[l.SummaryID] = summaryDeltas[l.SummaryID].Add(delta)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		TransactionType: transactionType,
		Description:     description,
		Timestamp:       now,
		Lines:           persisted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     systemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: systemActor,
		},
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		summaryIDs := make([]int64, 0, len(summaryDeltas))
		for id := range summaryDeltas {
			summaryIDs = append(summaryIDs, id)
		}
		instanceIDs := make([]int64, 0, len(instanceDeltas))
		for id := range instanceDeltas {
			instanceIDs = append(instanceIDs, id)
		}

		if err := s.accountRepo.LockAccounts(ctx, summaryIDs, instanceIDs); err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}
		if err := s.accountRepo.ApplyBalanceDeltas(ctx, summaryDeltas, instanceDeltas, systemActor, now); err != nil {
			return fmt.Errorf("failed to apply balance deltas: %w", err)
		}
		if err := s.ledgerRepo.SaveTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Posting event failed", slog.String("transaction_type", transactionType), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Posting event committed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_type", transactionType),
		slog.Int("lines", len(persisted)),
	)
	return &txn, nil
}

// ExpandAndPost expands the split rules for a transaction type and posts the
// resulting lines as one event.
func (s *postingService) ExpandAndPost(ctx context.Context, req dto.ExpandAndPostRequest) (*dto.ExpandAndPostResponse, error) {
	lines, skips, err := s.ruleEngine.Expand(ctx, req.TransactionType, req.BaseAmount)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: every split of %s was skipped", apperrors.ErrValidation, req.TransactionType)
	}

	txn, err := s.Post(ctx, req.TransactionType, lines, req.Description)
	if err != nil {
		return nil, err
	}

	return &dto.ExpandAndPostResponse{
		TransactionID: txn.TransactionID,
		Lines:         dto.ToLineResponses(lines),
		Skips:         dto.ToSkipResponses(skips),
	}, nil
}

// GetTransaction fetches one posted transaction by id.
func (s *postingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", transactionID, err)
	}
	return txn, nil
}
