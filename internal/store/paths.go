package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/crosswalk/internal/constants"
)

// GlobalDir returns the path to the per-user .crosswalk directory.
// On Unix: ~/.crosswalk
// On Windows: %USERPROFILE%\.crosswalk
func GlobalDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.DirName), nil
}

// LocalDir returns the path to the .crosswalk directory under root.
func LocalDir(root string) string {
	return filepath.Join(root, constants.DirName)
}

// DatabasePath returns the archive database path under root.
func DatabasePath(root string) string {
	return filepath.Join(LocalDir(root), constants.DatabaseFile)
}
