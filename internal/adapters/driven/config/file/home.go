package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the codebook home directory.
const HomeEnv = "CODEBOOK_HOME"

// HomeDir returns the directory holding config.toml, prompts and data.
// CODEBOOK_HOME wins over ~/.codebook.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".codebook"), nil
}
