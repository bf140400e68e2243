package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// overridesDocument is the YAML layout of per-contract overrides:
//
//	contracts:
//	  zero:
//	    iterations: 64
//	    timeoutMillis: 500
type overridesDocument struct {
	Contracts map[string]domain.RunConfigOverride `yaml:"contracts"`
}

// LoadOverrides reads per-contract overrides from path. A missing file yields
// no overrides.
func LoadOverrides(path string) (map[string]*domain.RunConfigOverride, error) {
	out := make(map[string]*domain.RunConfigOverride)
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes the YAML overrides document. Unknown keys are rejected.
func ParseOverrides(data []byte) (map[string]*domain.RunConfigOverride, error) {
	var file overridesDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse overrides file: %w", err)
	}

	out := make(map[string]*domain.RunConfigOverride, len(file.Contracts))
	for name, o := range file.Contracts {
		override := o
		out[name] = &override
	}
	return out, nil
}

// SortedContracts returns the contract names of an override set in order.
func SortedContracts(overrides map[string]*domain.RunConfigOverride) []string {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
