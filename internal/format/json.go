package format

import (
	"fmt"

	"github.com/agentic-research/edb/internal/value"
	"github.com/ohler55/ojg/oj"
)

// JSON decodes JSON documents via ojg. Object keys are always strings, so
// JSON input is safe for the string-key map schema.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Extensions() []string { return []string{"json"} }

func (JSON) Decode(data []byte) (value.Value, error) {
	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return fromGo(parsed)
}
