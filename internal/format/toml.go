package format

import (
	"fmt"

	"github.com/agentic-research/edb/internal/value"
	"github.com/pelletier/go-toml/v2"
)

// TOML decodes TOML documents. Keys are always strings, so TOML input is
// safe for the string-key map schema. Datetimes are recorded as RFC 3339
// strings; the fact schema has no time column.
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) Extensions() []string { return []string{"toml"} }

func (TOML) Decode(data []byte) (value.Value, error) {
	m := map[string]any{}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return fromGo(m)
}
