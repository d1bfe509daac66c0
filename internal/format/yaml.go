package format

import (
	"fmt"

	"github.com/agentic-research/edb/internal/value"
	"gopkg.in/yaml.v3"
)

// YAML decodes YAML documents. YAML mappings may carry non-string keys,
// which survive as generic map entries; such documents require the
// generic-key schema variant.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Extensions() []string { return []string{"yaml", "yml"} }

func (YAML) Decode(data []byte) (value.Value, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return fromGo(doc)
}
