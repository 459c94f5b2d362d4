package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// recordSchema is the minimum shape a model-emitted record must have.
// Extra keys are allowed and carried through to the record.
const recordSchema = `{
  "type": "object",
  "required": ["feature", "description"],
  "properties": {
    "feature":     {"type": "string"},
    "description": {"type": "string"},
    "priority":    {"type": ["number", "string", "null"]},
    "type":        {"type": ["string", "null"]},
    "moscow":      {"type": ["string", "null"]},
    "question":    {"type": ["string", "null"]},
    "answer":      {"type": ["string", "null"]}
  }
}`

// fenceLine matches a whole opening or closing fence line with any
// language tag; stray fences elsewhere are removed without touching the
// text around them.
var (
	fenceLine  = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t]*$")
	strayFence = regexp.MustCompile("```")
)

var compileRecordSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("requirement.json", strings.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("requirement.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ParseResponse turns raw model output into requirement records.
//
// It tolerates code fences, one extra layer of string quoting, and
// Python literal syntax. A payload that is not a list, or cannot be
// parsed at all, returns an error wrapping domain.ErrResponseParse.
// List elements that are not records of the expected shape are dropped
// with a warning; the rest are returned in order.
func ParseResponse(raw string) ([]domain.Requirement, error) {
	schema, err := compileRecordSchema()
	if err != nil {
		return nil, err
	}

	payload := unwrapResponse(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrResponseParse)
	}

	value, err := decodeLiteral(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResponseParse, err)
	}

	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", domain.ErrResponseParse, value)
	}

	records := make([]domain.Requirement, 0, len(items))
	for i, item := range items {
		if err := schema.Validate(item); err != nil {
			logger.Warn("dropping element %d: %v", i, err)
			continue
		}
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, domain.RequirementFromMap(m))
	}
	return records, nil
}

// unwrapResponse strips code fences and surrounding backticks, quotes and
// whitespace. A payload wrapped in one layer of double quotes is unquoted
// and unescaped.
func unwrapResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = fenceLine.ReplaceAllString(s, "")
	s = strayFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(unescapeQuoted(s[1 : len(s)-1]))
	}
	return strings.Trim(s, "`\n\r\t ")
}

// decodeLiteral parses s as JSON, falling back to Python literal syntax.
func decodeLiteral(s string) (any, error) {
	var v any
	jsonErr := json.Unmarshal([]byte(s), &v)
	if jsonErr == nil {
		return v, nil
	}

	converted, err := pythonLiteralToJSON(s)
	if err != nil {
		return nil, fmt.Errorf("parse literal: %w", err)
	}
	if err := json.Unmarshal([]byte(converted), &v); err != nil {
		return nil, fmt.Errorf("parse literal: %w", jsonErr)
	}
	return v, nil
}
