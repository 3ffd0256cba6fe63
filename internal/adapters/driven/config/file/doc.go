// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the codebook home directory
// (~/.codebook, or $CODEBOOK_HOME).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
package file
