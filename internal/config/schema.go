package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"DataPipeline/internal/domain"
)

const (
	defaultSchemaPath = "schema.yaml"
	schemaPathEnv     = "DATAPIPELINE_SCHEMA"
)

// schemaDocument mirrors schema.yaml. COLUMNS is kept as a node so the
// declared column order survives decoding.
type schemaDocument struct {
	Columns yaml.Node       `yaml:"COLUMNS"`
	Ranges  *rangesDocument `yaml:"RANGES"`
}

type rangesDocument struct {
	Age   *boundsDocument `yaml:"age"`
	Hours *boundsDocument `yaml:"hours"`
}

type boundsDocument struct {
	Column  string   `yaml:"column"`
	Columns []string `yaml:"columns"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
}

// SchemaPath resolves the schema location from the flag value or env.
func SchemaPath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(schemaPathEnv); v != "" {
		return v
	}
	return defaultSchemaPath
}

// LoadSchema reads schema.yaml into a SchemaSpec.
func LoadSchema(path string) (domain.SchemaSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SchemaSpec{}, fmt.Errorf("%w: read schema %s: %v", domain.ErrConfiguration, path, err)
	}
	spec, err := ParseSchema(raw)
	if err != nil {
		return domain.SchemaSpec{}, fmt.Errorf("schema %s: %w", path, err)
	}
	return spec, nil
}

// ParseSchema decodes a schema document.
func ParseSchema(raw []byte) (domain.SchemaSpec, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return domain.SchemaSpec{}, fmt.Errorf("%w: yaml file is empty", domain.ErrConfiguration)
	}

	var doc schemaDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.SchemaSpec{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	columns, err := decodeColumns(&doc.Columns)
	if err != nil {
		return domain.SchemaSpec{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	ranges, err := doc.Ranges.rules()
	if err != nil {
		return domain.SchemaSpec{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	return domain.NewSchemaSpec(columns, ranges), nil
}

func decodeColumns(node *yaml.Node) ([]domain.ColumnSpec, error) {
	if node.Kind == 0 {
		return nil, errors.New("COLUMNS is required")
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("COLUMNS must be a mapping of column name to type")
	}
	if len(node.Content) == 0 {
		return nil, errors.New("COLUMNS must not be empty")
	}

	columns := make([]domain.ColumnSpec, 0, len(node.Content)/2)
	seen := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode || strings.TrimSpace(value.Value) == "" {
			return nil, fmt.Errorf("column %s: type must be a non-empty scalar", key.Value)
		}
		if seen[key.Value] {
			return nil, fmt.Errorf("column %s declared twice", key.Value)
		}
		seen[key.Value] = true
		columns = append(columns, domain.ColumnSpec{Name: key.Value, Type: value.Value})
	}
	return columns, nil
}

func (r *rangesDocument) rules() (domain.RangeRules, error) {
	rules := domain.DefaultRangeRules()
	if r == nil {
		return rules, nil
	}

	if r.Age != nil {
		if r.Age.Column != "" {
			rules.AgeColumn = r.Age.Column
		}
		applyBounds(&rules.Age, r.Age)
	}
	if r.Hours != nil {
		if r.Hours.Columns != nil {
			rules.HourColumns = r.Hours.Columns
		}
		applyBounds(&rules.Hours, r.Hours)
	}

	if rules.Age.Min > rules.Age.Max {
		return domain.RangeRules{}, errors.New("RANGES.age: min exceeds max")
	}
	if rules.Hours.Min > rules.Hours.Max {
		return domain.RangeRules{}, errors.New("RANGES.hours: min exceeds max")
	}
	return rules, nil
}

func applyBounds(dst *domain.Bounds, doc *boundsDocument) {
	if doc.Min != nil {
		dst.Min = *doc.Min
	}
	if doc.Max != nil {
		dst.Max = *doc.Max
	}
}
