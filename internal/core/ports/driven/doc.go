// Package driven defines what the extraction core needs from the outside:
// file readers, a model, storage and configuration. Adapters under
// internal/adapters/driven and internal/providers implement them.
//
// # Required
//
//   - ContentProvider: Extracts text and tables from one file category
//   - ProviderRegistry: Selects the provider for a category
//   - LLMService: Language model used for requirement extraction
//   - RequirementStore: Persists extraction runs per project
//   - ConfigStore: Application configuration
//
// # Optional
//
// A nil value falls back to built-in behaviour:
//
//   - PromptStore: Customisable prompt templates. Without it, built-in prompts are used.
//   - CommandRunner: External tool execution. Defaults to os/exec.
//
// This package imports only domain.
package driven
