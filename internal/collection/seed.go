package collection

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout: collection name to a list of records.
type SeedFile map[string][]Record

// ParseSeed reads a seed document.
func ParseSeed(r io.Reader) (SeedFile, error) {
	var sf SeedFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil {
		if err == io.EOF {
			return SeedFile{}, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return sf, nil
}

// LoadSeedFile reads the seed at path.
func LoadSeedFile(path string) (SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSeed(f)
}

// Seed writes the records of every collection that is still empty and
// returns how many were created. Non-empty collections are left alone so a
// restart does not duplicate data.
func Seed(ctx context.Context, b Backend, sf SeedFile) (int, error) {
	names := make([]string, 0, len(sf))
	for name := range sf {
		names = append(names, name)
	}
	sort.Strings(names)

	created := 0
	for _, name := range names {
		existing, err := b.List(ctx, name, nil)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", name, err)
		}
		if len(existing) > 0 {
			continue
		}
		for _, rec := range sf[name] {
			if _, err := b.Create(ctx, name, rec); err != nil {
				return created, fmt.Errorf("seed %s: %w", name, err)
			}
			created++
		}
	}
	return created, nil
}
