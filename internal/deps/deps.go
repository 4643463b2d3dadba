package deps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement is an executable the backend launch relies on. Dir mirrors the
// launch working directory: a relative command with a path separator (for
// example venv/bin/python) resolves against it, as os/exec does at launch.
type Requirement struct {
	Name        string
	Command     string
	Dir         string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if status.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := resolve(status.Command, strings.TrimSpace(req.Dir))
		if err != nil {
			status.Detail = describe(status.Command, err)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

func resolve(cmd, dir string) (string, error) {
	if !strings.ContainsRune(cmd, os.PathSeparator) {
		return exec.LookPath(cmd)
	}
	path := cmd
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return "", fs.ErrPermission
	}
	return path, nil
}

func describe(cmd string, err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("binary %q not found", cmd)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("%q is not executable", cmd)
	default:
		return fmt.Sprintf("check %q: %v", cmd, err)
	}
}
