package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/notecard/internal/config"
	"github.com/aretw0/notecard/pkg/adapters/fs"
)

// FindRoot looks upwards from startDir for a data directory, recognised by
// a notecard.yaml or notes.json file, and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		if hasFile(dir, config.FileName) || hasFile(dir, fs.DefaultNotesFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
