package deps

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// CheckWorkingDir reports whether dir exists, is a directory, and can be
// entered and read by the current user.
func CheckWorkingDir(name, dir string) Status {
	dir = strings.TrimSpace(dir)
	status := Status{
		Name:        name,
		Command:     dir,
		Description: "Backend working directory",
	}
	if dir == "" {
		status.Detail = "working directory not configured"
		return status
	}
	info, err := os.Stat(dir)
	if err != nil {
		status.Detail = fmt.Sprintf("stat %q: %v", dir, err)
		return status
	}
	if !info.IsDir() {
		status.Detail = fmt.Sprintf("%q is not a directory", dir)
		return status
	}
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		status.Detail = fmt.Sprintf("access %q: %v", dir, err)
		return status
	}
	status.Available = true
	return status
}
