// Package automation loads the operator-maintained mapping from order stage
// to default dispatcher.
//
// The seed file looks like:
//
//	stages:
//	  - stage_id: assembly
//	    dispatcher_id: 5f0c9a7e-2b1d-4c3e-9f4a-8d6b2e1c0a93
//	    dispatcher_percentage: 10
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mtlprog/taskreview/internal/domain"
)

// Percentage is a dispatcher cut read from YAML without going through float64.
type Percentage struct {
	decimal.Decimal
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Percentage) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dispatcher_percentage must be a number", node.Line)
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(node.Value), "%"))
	if err != nil {
		return fmt.Errorf("line %d: dispatcher_percentage %q: %w", node.Line, node.Value, err)
	}
	p.Decimal = d
	return nil
}

// File is the seed file layout.
type File struct {
	Stages []Entry `yaml:"stages"`
}

// Entry is one stage mapping in the seed file.
type Entry struct {
	StageID              string     `yaml:"stage_id"`
	DispatcherID         string     `yaml:"dispatcher_id"`
	DispatcherPercentage Percentage `yaml:"dispatcher_percentage"`
}

// Parse decodes and validates a seed file.
func Parse(r io.Reader) ([]*domain.AutomationSetting, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []*domain.AutomationSetting{}, nil
		}
		return nil, fmt.Errorf("decode automation settings: %w", err)
	}

	seen := make(map[string]bool, len(file.Stages))
	settings := make([]*domain.AutomationSetting, 0, len(file.Stages))
	for i, entry := range file.Stages {
		stageID := strings.TrimSpace(entry.StageID)
		if seen[stageID] {
			return nil, fmt.Errorf("stage %d: duplicate stage_id %q", i+1, stageID)
		}
		seen[stageID] = true

		if _, err := uuid.Parse(entry.DispatcherID); err != nil {
			return nil, fmt.Errorf("stage %q: dispatcher_id must be a UUID: %w", stageID, err)
		}

		setting := &domain.AutomationSetting{
			StageID:              stageID,
			DispatcherID:         entry.DispatcherID,
			DispatcherPercentage: entry.DispatcherPercentage.Decimal,
		}
		if err := setting.Validate(); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		settings = append(settings, setting)
	}

	return settings, nil
}

// LoadFile reads and validates the seed file at path.
func LoadFile(path string) ([]*domain.AutomationSetting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open automation settings: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Store persists automation settings.
type Store interface {
	Upsert(ctx context.Context, setting *domain.AutomationSetting) error
}

// Import writes every setting to store, stopping at the first failure.
func Import(ctx context.Context, store Store, settings []*domain.AutomationSetting) (int, error) {
	for i, setting := range settings {
		if err := store.Upsert(ctx, setting); err != nil {
			return i, fmt.Errorf("import stage %s: %w", setting.StageID, err)
		}
		slog.Info("automation setting imported",
			"stage_id", setting.StageID,
			"dispatcher_id", setting.DispatcherID,
			"dispatcher_percentage", setting.DispatcherPercentage,
		)
	}
	return len(settings), nil
}
