package format

import (
	"fmt"
	"sort"

	"github.com/agentic-research/edb/internal/value"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCL decodes HCL documents through the native syntax tree: a body becomes a
// map of its attributes (evaluated without a context, so only literal and
// collection expressions are allowed) and its blocks. Repeated block types
// collapse into a sequence; labeled blocks carry their labels under a
// "labels" entry.
type HCL struct{}

func (HCL) Name() string { return "hcl" }

func (HCL) Extensions() []string { return []string{"hcl", "tf"} }

func (HCL) Decode(data []byte) (value.Value, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "input.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl: %w", diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected hcl body type %T", file.Body)
	}
	return hclBody(body)
}

func hclBody(body *hclsyntax.Body) (value.Value, error) {
	var entries []value.MapEntry

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, diags := body.Attributes[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate attribute %q: %w", name, diags)
		}
		converted, err := fromCty(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		entries = append(entries, value.MapEntry{Key: value.String(name), Value: converted})
	}

	// Blocks grouped by type, first-seen order.
	var types []string
	byType := make(map[string][]value.Value)
	for _, block := range body.Blocks {
		v, err := hclBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}
		if len(block.Labels) > 0 {
			labels := make([]value.Value, len(block.Labels))
			for i, l := range block.Labels {
				labels[i] = value.String(l)
			}
			m := v.(value.Map)
			v = append(value.Map{{Key: value.String("labels"), Value: value.Seq(labels)}}, m...)
		}
		if _, seen := byType[block.Type]; !seen {
			types = append(types, block.Type)
		}
		byType[block.Type] = append(byType[block.Type], v)
	}
	for _, t := range types {
		vs := byType[t]
		if len(vs) == 1 {
			entries = append(entries, value.MapEntry{Key: value.String(t), Value: vs[0]})
		} else {
			entries = append(entries, value.MapEntry{Key: value.String(t), Value: value.Seq(vs)})
		}
	}

	return value.Map(entries), nil
}

func fromCty(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Unit{}, nil
	}
	t := v.Type()
	switch {
	case t == cty.Bool:
		return value.Bool(v.True()), nil
	case t == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return value.Int64(i), nil
		}
		f, _ := bf.Float64()
		return value.Float64(f), nil
	case t == cty.String:
		return value.String(v.AsString()), nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		vals := v.AsValueSlice()
		items := make([]value.Value, len(vals))
		for i, item := range vals {
			converted, err := fromCty(item)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return value.Seq(items), nil
	case t.IsObjectType() || t.IsMapType():
		m := v.AsValueMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]value.MapEntry, 0, len(keys))
		for _, k := range keys {
			converted, err := fromCty(m[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, value.MapEntry{Key: value.String(k), Value: converted})
		}
		return value.Map(entries), nil
	default:
		return nil, fmt.Errorf("unsupported hcl value type %s", t.FriendlyName())
	}
}
