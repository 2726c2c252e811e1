// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// WriteYAML writes report to path, creating parent directories.
func WriteYAML(path string, report *types.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFile(path, data)
}

// ReadYAML loads a report previously written by WriteYAML.
func ReadYAML(path string) (*types.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r types.Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}

// WriteJSON writes report to path as indented JSON.
func WriteJSON(path string, report *types.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
