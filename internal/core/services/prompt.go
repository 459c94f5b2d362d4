package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Placeholders in the extraction prompt template.
const (
	placeholderPrevious    = "{{previous}}"
	placeholderInstruction = "{{instruction}}"
	placeholderText        = "{{text}}"
)

// systemInstruction is sent with every chunk, separate from the
// user-editable template.
const systemInstruction = "You extract software requirements from documents. " +
	"Answer with a JSON array of objects and nothing else."

// DefaultExtractionPrompt is used when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultExtractionPrompt = `YOUR TASK:
From the text below, extract ONLY the actual software or system requirements.

RULES:
- Extract all stated requirements, including those in tables, bullet points, or paragraphs.
- DO NOT skip requirements that are duplicated in different formats. Include all while extracting requirements.
- YOU CAN summarize, infer, or add extra information but DON'T do it such that meaning will change.
- IF YOU HAVE ANY DOUBT ABOUT THE REQUIREMENT OR ABOUT A STATEMENT WHICH CAN BE A REQUIREMENT, PLEASE ASK A QUESTION IN FORMATTED WAY mention below
- Return only the actual software or system requirements.
- FORMAT STRICTLY: Output must be a valid JSON list of objects. Do not add explanations, markdown, or any extra text.
- Return format: [{"feature": "Requirement name in short","description":"Actual Requirement", "priority": can be from 1 to 5 assign it according to you by seeing other requirements, "type":"F for Functional and NF for Non-Functional", "moscow":"Assign MoSCoW priority like M,S,C,W by seeing other requirements","question":"If any question needs to be asked to user for clarification of requirement otherwise keep it empty"}]
- If no valid requirements are found, return an empty list: []
- Do not repeat requirements already listed under PREVIOUSLY EXTRACTED REQUIREMENTS.
{{instruction}}
PREVIOUSLY EXTRACTED REQUIREMENTS: {{previous}}

INPUT TEXT:
{{text}}

RETURN ALL THE UNIQUE REQUIREMENTS EXTRACTED in FORMAT provided above.:
`

// loadExtractionPrompt returns the configured template or the default.
func loadExtractionPrompt(store driven.PromptStore) string {
	if store == nil {
		return DefaultExtractionPrompt
	}
	prompt, err := store.Load(driven.PromptRequirementExtraction)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return DefaultExtractionPrompt
	}
	return prompt
}

// buildPrompt fills the template in a single pass, so placeholder text
// inside the chunk or the previous records is never expanded.
func buildPrompt(template string, previous []domain.Requirement, instruction, text string) string {
	return strings.NewReplacer(
		placeholderPrevious, renderPrevious(previous),
		placeholderInstruction, renderInstruction(instruction),
		placeholderText, text,
	).Replace(template)
}

// renderPrevious encodes records as a JSON array.
func renderPrevious(records []domain.Requirement) string {
	if len(records) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderInstruction formats an optional user instruction as its own section.
func renderInstruction(instruction string) string {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return ""
	}
	return "\nUSER INSTRUCTION (follow it while applying the rules above):\n" + instruction + "\n"
}
