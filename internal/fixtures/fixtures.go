// Package fixtures holds the example contracts shipped with the engine, one per
// corner of the engine they exercise.
package fixtures

import (
	"fmt"

	"gitlab.com/equivcheck-2025.net/internal/core/services/catalog"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

func Declarations() []domain.Declaration {
	return []domain.Declaration{
		Zero(),
		Static(),
		Widgets(),
		Standalone(),
		Precondition(),
		Divide(),
		Clamp(),
	}
}

// Register adds every fixture contract to the catalog.
func Register(c catalog.ICatalogService) error {
	for _, decl := range Declarations() {
		if _, err := c.Register(decl); err != nil {
			return fmt.Errorf("failed to register fixture %s: %w", decl.Name, err)
		}
	}
	return nil
}
