// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tyx/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the full history, with diagnostics and labels, to path
// as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	records, err := s.exportRecords(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the full history, with diagnostics and labels, to path
// as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	records, err := s.exportRecords(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportRecords(ctx context.Context) ([]types.ConversionRecord, error) {
	records, err := s.Recent(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	for i := range records {
		if records[i].Issues, err = s.Diagnostics(ctx, records[i].ID); err != nil {
			return nil, err
		}
		if records[i].Labels, err = s.Labels(ctx, records[i].ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}
