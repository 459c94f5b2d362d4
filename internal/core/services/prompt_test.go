package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

func TestBuildPrompt_DefaultTemplate(t *testing.T) {
	prompt := buildPrompt(DefaultExtractionPrompt, nil, "", "The system shall log in users.")

	assert.Contains(t, prompt, "PREVIOUSLY EXTRACTED REQUIREMENTS: []")
	assert.Contains(t, prompt, "INPUT TEXT:\nThe system shall log in users.")
	assert.NotContains(t, prompt, "{{")
	assert.NotContains(t, prompt, "USER INSTRUCTION")
}

func TestBuildPrompt_PlaceholdersInTextAreNotExpanded(t *testing.T) {
	prompt := buildPrompt("{{previous}}|{{text}}", nil, "", "literal {{previous}}")

	assert.Equal(t, "[]|literal {{previous}}", prompt)
}

func TestRenderPrevious(t *testing.T) {
	records := []domain.Requirement{{Feature: "A&B", Description: "<x>"}}

	got := renderPrevious(records)

	assert.Equal(t,
		`[{"description":"<x>","feature":"A&B","moscow":"","priority":0,"question":"","type":""}]`,
		got)
}

func TestRenderInstruction(t *testing.T) {
	assert.Empty(t, renderInstruction("   "))
	assert.Equal(t,
		"\nUSER INSTRUCTION (follow it while applying the rules above):\nOnly billing\n",
		renderInstruction(" Only billing "))
}

func TestLoadExtractionPrompt(t *testing.T) {
	assert.Equal(t, DefaultExtractionPrompt, loadExtractionPrompt(nil))
	assert.Equal(t, DefaultExtractionPrompt, loadExtractionPrompt(&mockPromptStore{template: "  "}))
	assert.Equal(t, "custom {{text}}", loadExtractionPrompt(&mockPromptStore{template: "custom {{text}}"}))
}
