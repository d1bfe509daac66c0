package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/edb/internal/value"
)

func TestByName(t *testing.T) {
	f, ok := ByName("toml")
	require.True(t, ok)
	assert.Equal(t, "toml", f.Name())

	_, ok = ByName("ron")
	assert.False(t, ok)
}

func TestByExtension(t *testing.T) {
	f, ok := ByExtension(".yml")
	require.True(t, ok)
	assert.Equal(t, "yaml", f.Name())

	f, ok = ByExtension("JSON")
	require.True(t, ok)
	assert.Equal(t, "json", f.Name())

	_, ok = ByExtension(".txt")
	assert.False(t, ok)
}

func TestJSONDecode(t *testing.T) {
	v, err := JSON{}.Decode([]byte(`{"s": "x", "a": [1, 2], "b": {"c": true}, "d": null}`))
	require.NoError(t, err)

	assert.Equal(t, value.Map{
		{Key: value.String("a"), Value: value.Seq{value.Int64(1), value.Int64(2)}},
		{Key: value.String("b"), Value: value.Map{
			{Key: value.String("c"), Value: value.Bool(true)},
		}},
		{Key: value.String("d"), Value: value.Unit{}},
		{Key: value.String("s"), Value: value.String("x")},
	}, v)
}

func TestJSONDecodeError(t *testing.T) {
	_, err := JSON{}.Decode([]byte(`{"unterminated`))
	assert.Error(t, err)
}

func TestTOMLDecode(t *testing.T) {
	doc := `
title = "demo"
count = 3

[owner]
name = "amy"
`
	v, err := TOML{}.Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, value.Map{
		{Key: value.String("count"), Value: value.Int64(3)},
		{Key: value.String("owner"), Value: value.Map{
			{Key: value.String("name"), Value: value.String("amy")},
		}},
		{Key: value.String("title"), Value: value.String("demo")},
	}, v)
}

func TestYAMLDecode(t *testing.T) {
	doc := `
enabled: true
items:
  - 1
  - two
nested:
  depth: 2
`
	v, err := YAML{}.Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, value.Map{
		{Key: value.String("enabled"), Value: value.Bool(true)},
		{Key: value.String("items"), Value: value.Seq{value.Int64(1), value.String("two")}},
		{Key: value.String("nested"), Value: value.Map{
			{Key: value.String("depth"), Value: value.Int64(2)},
		}},
	}, v)
}

func TestHCLDecode(t *testing.T) {
	doc := `
name = "edb"
count = 3
tags = ["a", "b"]

settings {
  debug = true
}

rule "first" {
  allow = true
}
`
	v, err := HCL{}.Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, value.Map{
		{Key: value.String("count"), Value: value.Int64(3)},
		{Key: value.String("name"), Value: value.String("edb")},
		{Key: value.String("tags"), Value: value.Seq{value.String("a"), value.String("b")}},
		{Key: value.String("settings"), Value: value.Map{
			{Key: value.String("debug"), Value: value.Bool(true)},
		}},
		{Key: value.String("rule"), Value: value.Map{
			{Key: value.String("labels"), Value: value.Seq{value.String("first")}},
			{Key: value.String("allow"), Value: value.Bool(true)},
		}},
	}, v)
}

func TestHCLRepeatedBlocks(t *testing.T) {
	doc := `
server {
  port = 1
}

server {
  port = 2
}
`
	v, err := HCL{}.Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, value.Map{
		{Key: value.String("server"), Value: value.Seq{
			value.Map{{Key: value.String("port"), Value: value.Int64(1)}},
			value.Map{{Key: value.String("port"), Value: value.Int64(2)}},
		}},
	}, v)
}

func TestHCLDecodeError(t *testing.T) {
	_, err := HCL{}.Decode([]byte(`name = `))
	assert.Error(t, err)
}
