package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginRequirement() Requirement {
	return Requirement{
		Feature:     "Login",
		Description: "Users sign in with email and password",
		Priority:    1,
		Type:        "Functional",
		MoSCoW:      "M",
		Question:    "",
	}
}

// TestRequirement_Canonical_SortedKeys tests the canonical encoding format
func TestRequirement_Canonical_SortedKeys(t *testing.T) {
	got := loginRequirement().Canonical()

	assert.Equal(t,
		`{"description":"Users sign in with email and password","feature":"Login","moscow":"M","priority":1,"question":"","type":"Functional"}`,
		got)
}

// TestRequirement_Canonical_OrderIndependent tests that key order never affects identity
func TestRequirement_Canonical_OrderIndependent(t *testing.T) {
	var a, b map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"feature":"X","description":"d","priority":2,"type":"F","moscow":"S","question":"q","source":"call"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"source":"call","question":"q","moscow":"S","type":"F","priority":2,"description":"d","feature":"X"}`), &b))

	assert.Equal(t, RequirementFromMap(a).Canonical(), RequirementFromMap(b).Canonical())
}

// TestRequirement_Canonical_CaseSensitive tests that case differences are distinct records
func TestRequirement_Canonical_CaseSensitive(t *testing.T) {
	a := loginRequirement()
	b := loginRequirement()
	b.Feature = "login"

	assert.NotEqual(t, a.Canonical(), b.Canonical())
}

// TestRequirement_Canonical_NoHTMLEscape tests that markup characters are kept literally
func TestRequirement_Canonical_NoHTMLEscape(t *testing.T) {
	r := loginRequirement()
	r.Description = "a < b && c > d"

	assert.Contains(t, r.Canonical(), `"a < b && c > d"`)
}

// TestRequirement_Canonical_Answer tests that answer is only present when set
func TestRequirement_Canonical_Answer(t *testing.T) {
	r := loginRequirement()
	assert.NotContains(t, r.Canonical(), `"answer"`)

	r.Answer = "Yes"
	assert.Contains(t, r.Canonical(), `"answer":"Yes"`)
}

// TestRequirementFromMap tests field conversion from decoded model output
func TestRequirementFromMap(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		expected Requirement
	}{
		{
			name: "all fields",
			input: map[string]any{
				"feature": "Login", "description": "d", "priority": float64(3),
				"type": "F", "moscow": "M", "question": "Why?", "answer": "Because",
			},
			expected: Requirement{Feature: "Login", Description: "d", Priority: 3, Type: "F", MoSCoW: "M", Question: "Why?", Answer: "Because"},
		},
		{
			name:     "numeric string priority",
			input:    map[string]any{"feature": "A", "description": "d", "priority": " 2 "},
			expected: Requirement{Feature: "A", Description: "d", Priority: 2, Extra: map[string]any{"priority": " 2 "}},
		},
		{
			name:     "fractional priority",
			input:    map[string]any{"feature": "A", "description": "d", "priority": 2.5},
			expected: Requirement{Feature: "A", Description: "d", Priority: 2, Extra: map[string]any{"priority": 2.5}},
		},
		{
			name:     "null priority",
			input:    map[string]any{"feature": "A", "description": "d", "priority": nil},
			expected: Requirement{Feature: "A", Description: "d", Extra: map[string]any{"priority": nil}},
		},
		{
			name:     "non numeric priority",
			input:    map[string]any{"feature": "A", "description": "d", "priority": "high"},
			expected: Requirement{Feature: "A", Description: "d", Extra: map[string]any{"priority": "high"}},
		},
		{
			name:     "null question",
			input:    map[string]any{"feature": "A", "description": "d", "question": nil},
			expected: Requirement{Feature: "A", Description: "d"},
		},
		{
			name:     "extra keys kept",
			input:    map[string]any{"feature": "A", "description": "d", "source": "email"},
			expected: Requirement{Feature: "A", Description: "d", Extra: map[string]any{"source": "email"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RequirementFromMap(tt.input))
		})
	}
}

// TestRequirement_Canonical_RawPriority tests that records differing only
// in a non-integer priority keep distinct identities
func TestRequirement_Canonical_RawPriority(t *testing.T) {
	priorities := []any{"High", "Low", 2.5, float64(2), "2"}

	seen := make(map[string]bool)
	for _, p := range priorities {
		r := RequirementFromMap(map[string]any{"feature": "Login", "description": "d", "priority": p})
		seen[r.Canonical()] = true
	}
	assert.Len(t, seen, len(priorities))

	r := RequirementFromMap(map[string]any{"feature": "Login", "description": "d", "priority": "High"})
	assert.Contains(t, r.Canonical(), `"priority":"High"`)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded Requirement
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.Canonical(), decoded.Canonical())

	whole := RequirementFromMap(map[string]any{"feature": "Login", "description": "d", "priority": float64(2)})
	assert.Nil(t, whole.Extra)
	assert.Contains(t, whole.Canonical(), `"priority":2,`)
}

// TestRequirement_JSON tests that the JSON form matches the canonical field map
func TestRequirement_JSON(t *testing.T) {
	r := loginRequirement()
	r.Extra = map[string]any{"source": "email"}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, r.Canonical(), string(data))

	var decoded Requirement
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, decoded)
}

// TestRequirement_UnmarshalJSON_Invalid tests that non-object input is rejected
func TestRequirement_UnmarshalJSON_Invalid(t *testing.T) {
	var r Requirement
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
}
