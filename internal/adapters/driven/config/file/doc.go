// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.reqsift on the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (config.toml)
//   - PromptStore: user-editable prompt templates (prompts/)
package file
