// Package registry holds an in-memory index of the account graph, loaded
// once at startup. It replaces repeated per-call existence lookups against
// the summaries and field-line collections.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
)

// AccountRegistry indexes summaries, field-line definitions and instances by
// id plus summaries by code. Reads are lock-free after Load; Reload swaps the
// whole index atomically.
type AccountRegistry struct {
	mu          sync.RWMutex
	summaries   map[int64]domain.Summary
	byCode      map[string]domain.Summary
	definitions map[int64]domain.FieldLineDefinition
	instances   map[int64]domain.FieldLineInstance
}

// Load builds a registry from the account repository.
func Load(ctx context.Context, repo portsrepo.AccountRepositoryFacade) (*AccountRegistry, error) {
	r := &AccountRegistry{}
	if err := r.Reload(ctx, repo); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the account graph and swaps the index.
func (r *AccountRegistry) Reload(ctx context.Context, repo portsrepo.AccountRepositoryFacade) error {
	summaries, err := repo.ListSummaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load summaries: %w", err)
	}
	definitions, err := repo.ListFieldLineDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load field-line definitions: %w", err)
	}
	instances, err := repo.ListFieldLineInstances(ctx)
	if err != nil {
		return fmt.Errorf("failed to load field-line instances: %w", err)
	}

	byID := make(map[int64]domain.Summary, len(summaries))
	byCode := make(map[string]domain.Summary, len(summaries))
	for _, s := range summaries {
		byID[s.SummaryID] = s
		byCode[s.Code] = s
	}
	defs := make(map[int64]domain.FieldLineDefinition, len(definitions))
	for _, d := range definitions {
		defs[d.DefinitionID] = d
	}
	insts := make(map[int64]domain.FieldLineInstance, len(instances))
	for _, in := range instances {
		insts[in.InstanceID] = in
	}

	r.mu.Lock()
	r.summaries = byID
	r.byCode = byCode
	r.definitions = defs
	r.instances = insts
	r.mu.Unlock()
	return nil
}

// Summary returns the summary with the given id.
func (r *AccountRegistry) Summary(id int64) (domain.Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[id]
	return s, ok
}

// SummaryByCode returns the summary with the given code.
func (r *AccountRegistry) SummaryByCode(code string) (domain.Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byCode[code]
	return s, ok
}

// Definition returns the field-line definition with the given id.
func (r *AccountRegistry) Definition(id int64) (domain.FieldLineDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.definitions[id]
	return d, ok
}

// Instance returns the field-line instance with the given id.
func (r *AccountRegistry) Instance(id int64) (domain.FieldLineInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.instances[id]
	return in, ok
}

// ResolveTarget resolves a split or mirror target into the (summaryID,
// instanceID) pair a ledger line carries. Instance references win over a
// bare summary reference; the owning summary is derived from the instance.
func (r *AccountRegistry) ResolveTarget(summaryID, instanceID *int64) (int64, *int64, bool) {
	if instanceID != nil {
		in, ok := r.Instance(*instanceID)
		if !ok {
			return 0, nil, false
		}
		if _, ok := r.Summary(in.SummaryID); !ok {
			return 0, nil, false
		}
		id := in.InstanceID
		return in.SummaryID, &id, true
	}
	if summaryID != nil {
		if _, ok := r.Summary(*summaryID); !ok {
			return 0, nil, false
		}
		return *summaryID, nil, true
	}
	return 0, nil, false
}

// FundingAccounts returns the Cash and Capital summaries used by the
// owner-funding imbalance guard.
func (r *AccountRegistry) FundingAccounts() (cash domain.Summary, capital domain.Summary, err error) {
	var ok bool
	cash, ok = r.SummaryByCode(domain.CodeCash)
	if !ok {
		return cash, capital, fmt.Errorf("%w: summary code %s", apperrors.ErrInvalidAccountReference, domain.CodeCash)
	}
	capital, ok = r.SummaryByCode(domain.CodeCapital)
	if !ok {
		return cash, capital, fmt.Errorf("%w: summary code %s", apperrors.ErrInvalidAccountReference, domain.CodeCapital)
	}
	return cash, capital, nil
}
