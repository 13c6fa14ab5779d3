package cli

import (
	"os"
	"path/filepath"
)

// rootPath resolves the optional [path] positional argument most commands
// accept, defaulting to the current working directory, and returns an
// absolute path.
func rootPath(args []string) (string, error) {
	p := "."
	if len(args) > 0 {
		p = args[0]
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		if err == nil {
			err = os.ErrInvalid
		}
		return "", err
	}
	return abs, nil
}
