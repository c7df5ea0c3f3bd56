package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"item-crowdfund/internal/core/domain"
)

// Fixture is the YAML bootstrap file: operators to allow and items to
// create when the registry is empty.
type Fixture struct {
	Operators []string      `yaml:"operators"`
	Items     []FixtureItem `yaml:"items"`
}

type FixtureItem struct {
	// Operator defaults to the first fixture operator.
	Operator string              `yaml:"operator"`
	Goal     int64               `yaml:"goal"`
	Metadata domain.ItemMetadata `yaml:"metadata"`
}

// Registry is the subset of port.CrowdfundUseCase the seed needs.
type Registry interface {
	AddOperator(ctx context.Context, requester, account string) error
	CreateItem(ctx context.Context, operator string, goal int64, md domain.ItemMetadata) (int64, error)
	ListItems(ctx context.Context) ([]domain.ItemSummary, error)
}

// LoadFixture parses a fixture from r.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// SeedFile applies the fixture at path.
func SeedFile(ctx context.Context, reg Registry, authority, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	f, err := LoadFixture(file)
	if err != nil {
		return err
	}
	return Seed(ctx, reg, authority, f)
}

// Seed adds the fixture operators and, when no item exists yet, creates
// the fixture items. Running it twice leaves the registry unchanged.
func Seed(ctx context.Context, reg Registry, authority string, f *Fixture) error {
	for _, op := range f.Operators {
		if err := reg.AddOperator(ctx, authority, op); err != nil {
			return fmt.Errorf("seed operator %q: %w", op, err)
		}
	}

	existing, err := reg.ListItems(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for i, it := range f.Items {
		op := it.Operator
		if op == "" && len(f.Operators) > 0 {
			op = f.Operators[0]
		}
		if _, err = reg.CreateItem(ctx, op, it.Goal, it.Metadata); err != nil {
			return fmt.Errorf("seed item %d: %w", i, err)
		}
	}
	return nil
}
