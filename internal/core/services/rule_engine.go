package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
	"github.com/crestpeak/hrfin_backend/internal/registry"
	"github.com/crestpeak/hrfin_backend/internal/utils/accounting"
)

// ruleEngineService expands declarative split rules into flat ledger lines.
type ruleEngineService struct {
	ruleRepo portsrepo.RuleRepositoryFacade
	accounts *registry.AccountRegistry
}

// NewRuleEngineService creates a new rule engine backed by the rule store
// and the in-memory account registry.
func NewRuleEngineService(ruleRepo portsrepo.RuleRepositoryFacade, accounts *registry.AccountRegistry) portssvc.RuleEngineSvcFacade {
	return &ruleEngineService{
		ruleRepo: ruleRepo,
		accounts: accounts,
	}
}

var _ portssvc.RuleEngineSvcFacade = (*ruleEngineService)(nil)

var hundred = decimal.NewFromInt(100)

// Expand fetches every rule for the transaction type and expands each split
// into a main line plus one line per mirror. Mirrors carry the parent
// split's computed amount; they never recompute. Splits that come out to
// zero, or whose account references cannot be resolved, are skipped and
// reported rather than failing the whole expansion.
func (s *ruleEngineService) Expand(ctx context.Context, transactionType string, baseAmount decimal.Decimal) ([]domain.Line, []domain.SplitSkip, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rules, err := s.ruleRepo.FindRulesByTransactionType(ctx, transactionType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch rules for type %s: %w", transactionType, err)
	}
	if len(rules) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrNoRulesFound, transactionType)
	}

	var lines []domain.Line
	var skips []domain.SplitSkip
	for _, rule := range rules {
		ruleLines, ruleSkips := s.expandRule(rule, baseAmount)
		lines = append(lines, ruleLines...)
		skips = append(skips, ruleSkips...)
	}

	if len(skips) > 0 {
		logger.Warn("Rule expansion skipped splits",
			slog.String("transaction_type", transactionType),
			slog.Int("skipped", len(skips)),
			slog.Int("expanded", len(lines)),
		)
	}
	return lines, skips, nil
}

func (s *ruleEngineService) expandRule(rule domain.Rule, baseAmount decimal.Decimal) ([]domain.Line, []domain.SplitSkip) {
	// Sum of declared percentages; a zero sum falls back to 100 so a single
	// implicit-100% split works and a divide-by-zero cannot happen.
	totalPercent := decimal.Zero
	for _, split := range rule.Splits {
		totalPercent = totalPercent.Add(split.Percentage)
	}
	// When no split declares a percentage, the whole rule runs against an
	// implicit 100 and each percentage-less split takes the full base.
	implicitPercent := totalPercent.IsZero()
	if implicitPercent {
		totalPercent = hundred
	}

	var lines []domain.Line
	var skips []domain.SplitSkip
	for _, split := range rule.Splits {
		amount := splitAmount(rule.Mode, split, baseAmount, totalPercent, implicitPercent)
		if amount.IsZero() {
			// A split with neither percentage nor fixed amount lands here too.
			skips = append(skips, domain.SplitSkip{RuleID: rule.RuleID, Field: split.Field, Reason: domain.SkipZeroAmount})
			continue
		}

		summaryID, instanceID, ok := s.accounts.ResolveTarget(split.SummaryID, split.InstanceID)
		if !ok {
			skips = append(skips, domain.SplitSkip{RuleID: rule.RuleID, Field: split.Field, Reason: domain.SkipUnresolvedReference})
			continue
		}

		lines = append(lines, domain.Line{
			LineID:     uuid.NewString(),
			Field:      split.Field,
			SummaryID:  summaryID,
			InstanceID: instanceID,
			Side:       split.Side,
			Amount:     amount,
			Reflection: split.Reflection,
		})

		for _, mirror := range split.Mirrors {
			mSummaryID, mInstanceID, ok := s.accounts.ResolveTarget(mirror.SummaryID, mirror.InstanceID)
			if !ok {
				skips = append(skips, domain.SplitSkip{RuleID: rule.RuleID, Field: mirror.Field, Reason: domain.SkipUnresolvedReference})
				continue
			}
			lines = append(lines, domain.Line{
				LineID:     uuid.NewString(),
				Field:      mirror.Field,
				SummaryID:  mSummaryID,
				InstanceID: mInstanceID,
				Side:       mirror.Side,
				Amount:     amount, // Same computed amount as the parent split
				Reflection: mirror.Reflection,
			})
		}
	}
	return lines, skips
}

// splitAmount computes a split's line amount from the rule's increment mode,
// rounded to currency precision.
func splitAmount(mode domain.IncrementMode, split domain.Split, baseAmount, totalPercent decimal.Decimal, implicitPercent bool) decimal.Decimal {
	amount := decimal.Zero
	if mode == domain.ModePercentage || mode == domain.ModeBoth {
		percentage := split.Percentage
		if implicitPercent && percentage.IsZero() {
			percentage = hundred
		}
		amount = amount.Add(baseAmount.Mul(percentage).Div(totalPercent))
	}
	if mode == domain.ModeFixed || mode == domain.ModeBoth {
		amount = amount.Add(split.FixedAmount)
	}
	return accounting.RoundCurrency(amount)
}
