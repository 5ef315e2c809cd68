// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem or read the process
// environment.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable answer prompt templates
//   - EnvReader: settings overrides from the environment and .env files
package file
