package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"tether/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func hostLines(status api.HostStatus, colorize bool) []string {
	lines := renderSectionHeader("Host", colorize)
	if status.Running {
		lines = append(lines, renderStatusLine("Host", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
	} else {
		lines = append(lines, renderStatusLine("Host", statusWarn, "stopping", colorize))
	}

	ready := status.Ready
	switch {
	case ready.Fired:
		lines = append(lines, renderStatusLine("Ready", statusOK, fmt.Sprintf("%q fired at %s", ready.Name, ready.FiredAt), colorize))
	default:
		lines = append(lines, renderStatusLine("Ready", statusInfo, fmt.Sprintf("%q pending (delay %dms)", ready.Name, ready.DelayMS), colorize))
	}

	backend := status.Backend
	switch {
	case backend.Running && backend.Exited:
		msg := fmt.Sprintf("exited (pid %d)", backend.PID)
		if backend.ExitError != "" {
			msg += ": " + backend.ExitError
		}
		lines = append(lines, renderStatusLine("Backend", statusWarn, msg, colorize))
	case backend.Running:
		lines = append(lines, renderStatusLine("Backend", statusOK, fmt.Sprintf("running (pid %d) since %s", backend.PID, backend.StartedAt), colorize))
	default:
		lines = append(lines, renderStatusLine("Backend", statusInfo, "not running", colorize))
	}
	lines = append(lines, renderStatusLine("Command", statusInfo, backend.Command, colorize))
	if status.LogPath != "" {
		lines = append(lines, renderStatusLine("Log", statusInfo, status.LogPath, colorize))
	}
	return lines
}
