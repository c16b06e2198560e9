package rules

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// schemaJSON describes a rules document: a non-null array of objects with
// non-empty trigger and replacement strings. The same schema applies to JSON
// and YAML documents (YAML is converted to JSON types before validation).
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["trigger", "replacement"],
    "properties": {
      "trigger": {"type": "string", "minLength": 1},
      "replacement": {"type": "string"}
    },
    "additionalProperties": false
  }
}`

var (
	schemaOnce sync.Once
	ruleSchema *jsonschema.Schema
)

func compiledSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rules.schema.json", strings.NewReader(schemaJSON)); err != nil {
			panic(fmt.Sprintf("rules: add schema resource: %v", err))
		}
		ruleSchema = compiler.MustCompile("rules.schema.json")
	})
	return ruleSchema
}

// ParseDocument parses and validates a rules document. Format is "json" or
// "yaml". Invalid documents return an error and no rules; callers keep the
// previous rule set active.
func ParseDocument(data []byte, format string) ([]Rule, error) {
	var doc any
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse rules document: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse rules document: %w", err)
		}
		doc = normalizeYAML(doc)
	default:
		return nil, fmt.Errorf("unsupported rules format %q (want json or yaml)", format)
	}

	if err := compiledSchema().Validate(doc); err != nil {
		return nil, fmt.Errorf("validate rules document: %w", err)
	}

	// The document is schema-valid; round-trip through JSON to decode.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode rules document: %w", err)
	}
	var rs []Rule
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode rules document: %w", err)
	}
	return rs, nil
}

// FormatForPath guesses the document format from a file extension.
func FormatForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return "yaml"
	default:
		return "json"
	}
}

// normalizeYAML converts yaml.v3 decode output into JSON-shaped values so the
// schema validator sees the types it expects.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalizeYAML(val)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(t)
	default:
		return v
	}
}
