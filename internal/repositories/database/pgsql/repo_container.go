package pgsql

import (
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryContainer wires every pgx repository plus the transaction
// manager over one pool.
func NewRepositoryContainer(pool *pgxpool.Pool) *portsrepo.Container {
	return &portsrepo.Container{
		Tx:       NewPgxTxManager(pool),
		Rules:    newPgxRuleRepository(pool),
		Accounts: newPgxAccountRepository(pool),
		Ledger:   newPgxLedgerRepository(pool),
		Reports:  newPgxReportRepository(pool),
	}
}
