// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

//go:embed report.schema.json
var reportSchema []byte

var reportSchemaLoader = gojsonschema.NewBytesLoader(reportSchema)

// SchemaError lists the ways a JSON document breaks the report schema.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return "report does not match schema: " + strings.Join(e.Errors, "; ")
}

// ValidateJSON checks data against the report schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(reportSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating report: %w", err)
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, re := range result.Errors() {
		se.Errors = append(se.Errors, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
	}
	return se
}

// ReadJSON loads a report written by WriteJSON after checking it against
// the report schema.
func ReadJSON(path string) (*types.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var r types.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
