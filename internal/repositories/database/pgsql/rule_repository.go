package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRuleRepository reads the declarative split rules.
type PgxRuleRepository struct {
	BaseRepository
}

func newPgxRuleRepository(pool *pgxpool.Pool) portsrepo.RuleRepositoryFacade {
	return &PgxRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RuleRepositoryFacade = (*PgxRuleRepository)(nil)

// FindRulesByTransactionType returns all rules for the type in stored order.
func (r *PgxRuleRepository) FindRulesByTransactionType(ctx context.Context, transactionType string) ([]domain.Rule, error) {
	query := `
		SELECT rule_id, transaction_type, mode, splits, created_at, created_by, last_updated_at, last_updated_by
		FROM split_rules
		WHERE transaction_type = $1
		ORDER BY rule_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query, transactionType)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules for type %s: %w", transactionType, err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var rule domain.Rule
		var splitsJSON []byte
		if err := rows.Scan(
			&rule.RuleID,
			&rule.TransactionType,
			&rule.Mode,
			&splitsJSON,
			&rule.CreatedAt,
			&rule.CreatedBy,
			&rule.LastUpdatedAt,
			&rule.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		if err := json.Unmarshal(splitsJSON, &rule.Splits); err != nil {
			return nil, fmt.Errorf("failed to decode splits for rule %s: %w", rule.RuleID, err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
