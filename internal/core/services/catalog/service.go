package catalog

import (
	"fmt"
	"sort"
	"sync"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/runconfig"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

const ReferenceName = "reference"

// ICatalogService holds the registered contracts and their units
type ICatalogService interface {
	// Register derives the contract from the declaration's reference unit and
	// checks every candidate against it
	Register(decl domain.Declaration) (*domain.Contract, error)

	// Lookup returns a contract with its reference and the named candidate
	Lookup(contract, candidate string) (*domain.Contract, domain.Unit, domain.Unit, error)

	// ApplyOverride layers an override over the declared one
	ApplyOverride(contract string, override *domain.RunConfigOverride) error

	// List describes every contract with its effective configuration
	List() ([]domain.ContractInfo, error)

	// Names lists the registered contract names in order
	Names() []string
}

type entry struct {
	declared   *domain.RunConfigOverride
	contract   *domain.Contract
	reference  domain.Unit
	candidates map[string]domain.Unit
}

var _ ICatalogService = (*CatalogService)(nil)

type CatalogService struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	resolver runconfig.IRunConfigResolver
	logger   primary.Logger
}

func NewCatalogService(resolver runconfig.IRunConfigResolver, logger primary.Logger) *CatalogService {
	return &CatalogService{
		entries:  make(map[string]*entry),
		resolver: resolver,
		logger:   logger,
	}
}

func (s *CatalogService) Register(decl domain.Declaration) (*domain.Contract, error) {
	if decl.Name == "" {
		return nil, fmt.Errorf("%w: missing name", errs.ErrInvalidContract)
	}

	reference := decl.Reference
	if reference.Name == "" {
		reference.Name = ReferenceName
	}
	contract, err := derive(decl, reference)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]domain.Unit, len(decl.Candidates))
	for name, unit := range decl.Candidates {
		unit.Name = name
		if err := matches(contract, reference, unit); err != nil {
			return nil, fmt.Errorf("contract %s, candidate %s: %w", decl.Name, name, err)
		}
		candidates[name] = unit
	}

	// A bad override is reported at registration, before any run.
	if _, err := s.resolver.Resolve(contract.Override); err != nil {
		return nil, fmt.Errorf("contract %s: %w", decl.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[decl.Name]; exists {
		return nil, fmt.Errorf("%w: %s", errs.ErrDuplicateContract, decl.Name)
	}
	s.entries[decl.Name] = &entry{
		declared:   decl.Override,
		contract:   contract,
		reference:  reference,
		candidates: candidates,
	}

	s.logger.Debug("Contract registered", "contract", decl.Name, "candidates", len(candidates))
	return contract, nil
}

// Candidate adds a candidate to a registered contract.
func (s *CatalogService) Candidate(contract, name string, unit domain.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[contract]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrContractNotFound, contract)
	}
	unit.Name = name
	if err := matches(e.contract, e.reference, unit); err != nil {
		return fmt.Errorf("contract %s, candidate %s: %w", contract, name, err)
	}
	e.candidates[name] = unit
	return nil
}

func (s *CatalogService) Lookup(contract, candidate string) (*domain.Contract, domain.Unit, domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[contract]
	if !ok {
		return nil, domain.Unit{}, domain.Unit{}, fmt.Errorf("%w: %s", errs.ErrContractNotFound, contract)
	}
	unit, ok := e.candidates[candidate]
	if !ok {
		return nil, domain.Unit{}, domain.Unit{}, fmt.Errorf("%w: %s/%s", errs.ErrCandidateNotFound, contract, candidate)
	}
	return e.contract, e.reference, unit, nil
}

func (s *CatalogService) ApplyOverride(contract string, override *domain.RunConfigOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[contract]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrContractNotFound, contract)
	}

	merged := override.ApplyOver(e.declared)
	if _, err := s.resolver.Resolve(merged); err != nil {
		return fmt.Errorf("contract %s: %w", contract, err)
	}

	// Runs already holding the old contract keep it.
	next := *e.contract
	next.Override = merged
	e.contract = &next

	s.logger.Info("Contract override applied", "contract", contract)
	return nil
}

func (s *CatalogService) List() ([]domain.ContractInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.ContractInfo, 0, len(s.entries))
	for _, name := range s.namesLocked() {
		e := s.entries[name]
		cfg, err := s.resolver.Resolve(e.contract.Override)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", name, err)
		}
		candidates := make([]string, 0, len(e.candidates))
		for c := range e.candidates {
			candidates = append(candidates, c)
		}
		sort.Strings(candidates)
		infos = append(infos, domain.NewContractInfo(e.contract, candidates, cfg))
	}
	return infos, nil
}

func (s *CatalogService) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namesLocked()
}

func (s *CatalogService) namesLocked() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
