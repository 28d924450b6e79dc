package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
	"github.com/crestpeak/hrfin_backend/internal/utils/accounting"
)

// TaxRuleSuffix names the companion rule set expanded alongside an order
// type during breakup derivation.
const TaxRuleSuffix = "Tax"

// Periodicity divisors normalizing recurring charges to a monthly figure.
var (
	twelve = decimal.NewFromInt(12)
	six    = decimal.NewFromInt(6)
	three  = decimal.NewFromInt(3)
)

// breakupService derives one-shot order breakups. Unlike the ledger path it
// never persists anything; the parent breakup is computed once and the
// seller/buyer views are pure categorical filters over it.
type breakupService struct {
	ruleRepo portsrepo.RuleRepositoryFacade
}

// NewBreakupService creates a new order breakup service.
func NewBreakupService(ruleRepo portsrepo.RuleRepositoryFacade) portssvc.BreakupSvcFacade {
	return &breakupService{ruleRepo: ruleRepo}
}

var _ portssvc.BreakupSvcFacade = (*breakupService)(nil)

// Derive expands the order-type rule and its tax variant into the parent
// breakup, then filters seller/buyer views when party ids were supplied.
func (s *breakupService) Derive(ctx context.Context, req dto.DeriveOrderBreakupRequest) (*dto.DeriveOrderBreakupResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	order := domain.Order{
		OrderID:       req.OrderID,
		OrderType:     req.OrderType,
		Amount:        req.OrderAmount,
		BuyerID:       req.BuyerID,
		SellerID:      req.SellerID,
		ActualAmounts: req.ActualAmounts,
	}

	rules, err := s.ruleRepo.FindRulesByTransactionType(ctx, req.OrderType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order rules: %w", err)
	}
	taxRules, err := s.ruleRepo.FindRulesByTransactionType(ctx, req.OrderType+TaxRuleSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order tax rules: %w", err)
	}
	if len(rules) == 0 && len(taxRules) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoRulesFound, req.OrderType)
	}

	// The parent breakup is computed exactly once across both rule sets.
	parent := domain.OrderBreakup{
		OrderID:   order.OrderID,
		OrderType: order.OrderType,
		Amount:    order.Amount,
	}
	for _, rule := range append(rules, taxRules...) {
		for _, split := range rule.Splits {
			amount := ComputeValue(order.Amount, rule.Mode, split, order)
			if amount.IsZero() {
				continue
			}
			parent.Lines = append(parent.Lines, domain.BreakupLine{
				Field:    split.Field,
				Category: split.Category,
				Side:     split.Side,
				Amount:   amount,
			})
		}
	}

	resp := &dto.DeriveOrderBreakupResponse{ParentBreakup: parent}
	if req.SellerID != "" {
		resp.SellerBreakup = breakupView(req.SellerID, parent, domain.CategorySeller)
	}
	if req.BuyerID != "" {
		resp.BuyerBreakup = breakupView(req.BuyerID, parent, domain.CategoryBuyer)
	}

	logger.Info("Order breakup derived",
		slog.String("order_id", req.OrderID),
		slog.String("order_type", req.OrderType),
		slog.Int("lines", len(parent.Lines)),
	)
	return resp, nil
}

// breakupView filters the parent's already-computed lines by category. No
// amount is ever recomputed here.
func breakupView(partyID string, parent domain.OrderBreakup, category domain.SplitCategory) *dto.BreakupView {
	lines := parent.FilterByCategory(category)
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return &dto.BreakupView{PartyID: partyID, Lines: lines, Total: total}
}

// ComputeValue is the per-split value function of the breakup path. Layers
// apply in order: base fixed+percentage, actual-amount override, flat
// per-transaction addend, periodicity normalization, and finally tax-slab
// matching for tax-category splits. The result carries currency precision.
func ComputeValue(baseAmount decimal.Decimal, mode domain.IncrementMode, split domain.Split, order domain.Order) decimal.Decimal {
	amount := decimal.Zero
	if mode == domain.ModeFixed || mode == domain.ModeBoth {
		amount = amount.Add(split.FixedAmount)
	}
	if mode == domain.ModePercentage || mode == domain.ModeBoth {
		amount = amount.Add(baseAmount.Mul(split.Percentage).Div(hundred))
	}

	if split.UseActualAmount {
		if actual, ok := order.ActualAmounts[split.Field]; ok {
			amount = actual
		}
	}

	amount = amount.Add(split.Addend)

	switch split.Periodicity {
	case domain.PeriodicityYearly:
		amount = amount.Div(twelve)
	case domain.PeriodicityBiannual:
		amount = amount.Div(six)
	case domain.PeriodicityQuarterly:
		amount = amount.Div(three)
	}

	if split.Category == domain.CategoryTax {
		for _, slab := range split.TaxSlabs {
			if baseAmount.GreaterThanOrEqual(slab.SlabStart) && baseAmount.LessThanOrEqual(slab.SlabEnd) {
				amount = slab.FixedTax.Add(baseAmount.Mul(slab.AdditionalTaxPercentage).Div(hundred))
				break
			}
		}
	}

	return accounting.RoundCurrency(amount)
}
