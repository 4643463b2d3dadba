package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RetentionTarget names per-run log files to prune. Keep protects the newest
// matching files regardless of age so the previous runs of a rarely started
// host stay readable.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
	Keep    int
}

type runLog struct {
	path    string
	modTime time.Time
}

// CleanupOldLogs removes run logs older than retentionDays and returns how
// many were removed. retentionDays <= 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	removed := 0
	for _, target := range targets {
		for _, candidate := range expiredRunLogs(target, cutoff) {
			if err := os.Remove(candidate.path); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("path", candidate.path),
					Error(err),
					String(FieldErrorHint, "check file permissions and log_dir ownership"),
					String(FieldImpact, "old run log remains on disk"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Debug("run log pruned",
					String("path", candidate.path),
					Time("modified", candidate.modTime),
					String(FieldEventType, "log_pruned"),
				)
			}
		}
	}
	return removed
}

func expiredRunLogs(target RetentionTarget, cutoff time.Time) []runLog {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	excluded := make(map[string]bool, len(target.Exclude))
	for _, path := range target.Exclude {
		if abs, err := filepath.Abs(strings.TrimSpace(path)); err == nil {
			excluded[abs] = true
		}
	}
	pattern := strings.TrimSpace(target.Pattern)

	var logs []runLog
	for _, entry := range entries {
		// The tether.log pointer is a symlink and is never pruned.
		if !entry.Type().IsRegular() {
			continue
		}
		if pattern != "" {
			if matched, err := filepath.Match(pattern, entry.Name()); err != nil || !matched {
				continue
			}
		}
		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil || excluded[path] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, runLog{path: path, modTime: info.ModTime()})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].modTime.After(logs[j].modTime) })
	if target.Keep > 0 {
		logs = logs[min(target.Keep, len(logs)):]
	}
	expired := logs[:0]
	for _, l := range logs {
		if l.modTime.Before(cutoff) {
			expired = append(expired, l)
		}
	}
	return expired
}
