package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Requirement field names as they appear in model output and storage.
const (
	FieldFeature     = "feature"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldType        = "type"
	FieldMoSCoW      = "moscow"
	FieldQuestion    = "question"
	FieldAnswer      = "answer"
)

// Requirement is one structured requirement record extracted by the model.
// Identity is its canonical serialization; see Canonical.
type Requirement struct {
	// Feature is the short name of the requirement.
	Feature string

	// Description is the detailed requirement text.
	Description string

	// Priority is intended to be 1 (highest) to 5 (lowest). Not enforced.
	// A value that is not a whole number ("High", 2.5, "3") keeps its raw
	// form in Extra["priority"], which then wins in Fields.
	Priority int

	// Type marks the requirement as functional or non-functional.
	Type string

	// MoSCoW is the Must/Should/Could/Won't letter.
	MoSCoW string

	// Question is an optional clarification question for the stakeholder.
	Question string

	// Answer is an optional answer to Question.
	Answer string

	// Extra carries any additional keys the model emitted.
	// They take part in canonicalization.
	Extra map[string]any
}

// Fields returns the record as a field map.
// The six core fields are always present; answer only when set.
func (r Requirement) Fields() map[string]any {
	m := make(map[string]any, 7+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}
	m[FieldFeature] = r.Feature
	m[FieldDescription] = r.Description
	if _, raw := r.Extra[FieldPriority]; !raw {
		m[FieldPriority] = r.Priority
	}
	m[FieldType] = r.Type
	m[FieldMoSCoW] = r.MoSCoW
	m[FieldQuestion] = r.Question
	if r.Answer != "" {
		m[FieldAnswer] = r.Answer
	}
	return m
}

// Canonical returns the dedup identity of the record: its field map
// encoded as JSON with keys sorted lexicographically.
// Two records are duplicates iff their canonical strings are equal.
func (r Requirement) Canonical() string {
	b, err := encodeFields(r.Fields())
	if err != nil {
		// Extra holds values that came out of a JSON decode, so this
		// only happens for hand-built records with unencodable values.
		return fmt.Sprintf("%#v", r.Fields())
	}
	return string(b)
}

// MarshalJSON encodes the record as its field map.
func (r Requirement) MarshalJSON() ([]byte, error) {
	return encodeFields(r.Fields())
}

// UnmarshalJSON decodes a field map into the record.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = RequirementFromMap(m)
	return nil
}

// MarshalYAML encodes the record as its field map.
func (r Requirement) MarshalYAML() (any, error) {
	return r.Fields(), nil
}

// RequirementFromMap builds a record from a decoded field map.
// Missing strings become empty. Priority is read from a number or a
// numeric string and is zero otherwise; unless the value was a whole
// number it is also kept verbatim in Extra, so records that differ only
// in priority stay distinct. Unknown keys go to Extra.
func RequirementFromMap(m map[string]any) Requirement {
	r := Requirement{
		Feature:     stringField(m[FieldFeature]),
		Description: stringField(m[FieldDescription]),
		Priority:    intField(m[FieldPriority]),
		Type:        stringField(m[FieldType]),
		MoSCoW:      stringField(m[FieldMoSCoW]),
		Question:    stringField(m[FieldQuestion]),
		Answer:      stringField(m[FieldAnswer]),
	}
	if raw, ok := m[FieldPriority]; ok && !isWholeNumber(raw) {
		r.Extra = map[string]any{FieldPriority: raw}
	}
	for k, v := range m {
		switch k {
		case FieldFeature, FieldDescription, FieldPriority, FieldType,
			FieldMoSCoW, FieldQuestion, FieldAnswer:
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
	return r
}

// encodeFields writes m as compact JSON. encoding/json sorts map keys.
func encodeFields(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func stringField(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

// isWholeNumber reports whether v encodes as the same JSON as its int form.
func isWholeNumber(v any) bool {
	switch n := v.(type) {
	case int, int64:
		return true
	case float64:
		return !math.IsInf(n, 0) && n == math.Trunc(n) && math.Abs(n) < 1<<53
	case json.Number:
		_, err := strconv.ParseInt(string(n), 10, 64)
		return err == nil
	}
	return false
}

func intField(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	}
	return 0
}
