package services

import (
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/registry"
)

// NewServiceContainer wires the core services against a repository container
// and the loaded account registry.
func NewServiceContainer(
	repos *portsrepo.Container,
	accounts *registry.AccountRegistry,
	employees portssvc.EmployeeDirectory,
	statements portssvc.StatementDelivery,
	expenseRetryBudget int,
) *portssvc.ServiceContainer {
	ruleEngine := NewRuleEngineService(repos.Rules, accounts)
	posting := NewPostingService(ruleEngine, repos.Ledger, repos.Accounts, repos.Tx)
	commission := NewCommissionService(repos.Ledger, repos.Reports, posting, repos.Tx, statements)
	expense := NewExpenseService(repos.Rules, repos.Ledger, repos.Reports, ruleEngine, posting, repos.Tx, accounts, employees, expenseRetryBudget)
	breakup := NewBreakupService(repos.Rules)

	return &portssvc.ServiceContainer{
		Posting:    posting,
		Commission: commission,
		Expense:    expense,
		Breakup:    breakup,
	}
}
