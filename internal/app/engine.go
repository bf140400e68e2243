// Package app wires the engine services shared by the server and the CLI.
package app

import (
	"fmt"

	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/catalog"
	"gitlab.com/equivcheck-2025.net/internal/core/services/generator"
	"gitlab.com/equivcheck-2025.net/internal/core/services/invoker"
	"gitlab.com/equivcheck-2025.net/internal/core/services/runconfig"
	"gitlab.com/equivcheck-2025.net/internal/core/services/testrun"
	"gitlab.com/equivcheck-2025.net/internal/core/services/verifier"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/fixtures"
)

type Engine struct {
	Resolver *runconfig.Resolver
	Catalog  *catalog.CatalogService
	TestRun  *testrun.TestRunService
}

// NewEngine builds the engine around the built-in contracts. File overrides
// are layered over each contract's declared override before registration, so
// stored overrides applied later still sit on top of them.
func NewEngine(
	defaults *config.RunDefaults,
	fileOverrides map[string]*domain.RunConfigOverride,
	logger primary.Logger,
	opts ...testrun.Option,
) (*Engine, error) {
	resolver := runconfig.NewResolver(defaults.Configuration, runconfig.Fixed{
		EdgeCases:   defaults.EdgeCaseSet,
		SimpleCases: defaults.SimpleCaseSet,
		MixedCases:  defaults.MixedCaseSet,
	})
	if _, err := resolver.Resolve(nil); err != nil {
		return nil, fmt.Errorf("invalid run defaults: %w", err)
	}

	cat := catalog.NewCatalogService(resolver, logger)
	seen := make(map[string]bool, len(fileOverrides))
	for _, decl := range fixtures.Declarations() {
		if o, ok := fileOverrides[decl.Name]; ok {
			decl.Override = o.ApplyOver(decl.Override)
			seen[decl.Name] = true
		}
		if _, err := cat.Register(decl); err != nil {
			return nil, fmt.Errorf("failed to register contract %s: %w", decl.Name, err)
		}
	}
	for _, name := range config.SortedContracts(fileOverrides) {
		if !seen[name] {
			logger.Warn("Override file names an unknown contract", "contract", name)
		}
	}

	testRun := testrun.NewTestRunService(
		generator.NewGeneratorService(logger),
		invoker.NewInvokerService(logger),
		verifier.NewVerifierService(logger),
		resolver,
		logger,
		opts...,
	)

	logger.Info("Engine ready", "contracts", len(cat.Names()))
	return &Engine{
		Resolver: resolver,
		Catalog:  cat,
		TestRun:  testRun,
	}, nil
}
