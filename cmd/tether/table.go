package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tether/internal/api"
)

const (
	preflightOK       = "ok"
	preflightMissing  = "missing"
	preflightOptional = "optional"
)

// preflightTable renders the launch preflight checks. Colour is applied only
// to the state column so piped output stays aligned.
func preflightTable(deps []api.DependencyStatus, colorize bool) string {
	if len(deps) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Launch preflight")
	tw.AppendHeader(table.Row{"Check", "Resolved", "State", "Detail"})

	failing := 0
	for _, dep := range deps {
		state := preflightState(dep)
		if state == preflightMissing {
			failing++
		}
		tw.AppendRow(table.Row{dep.Name, dep.Command, state, dep.Detail})
	}
	if failing > 0 {
		tw.AppendFooter(table.Row{"", "", "", "backend start will fail until resolved"})
	}

	stateConfig := table.ColumnConfig{Name: "State", Align: text.AlignCenter, AlignHeader: text.AlignCenter}
	if colorize {
		stateConfig.Transformer = func(val any) string {
			state, _ := val.(string)
			switch state {
			case preflightOK:
				return text.FgGreen.Sprint(state)
			case preflightMissing:
				return text.FgRed.Sprint(state)
			default:
				return text.FgYellow.Sprint(state)
			}
		}
	}
	tw.SetColumnConfigs([]table.ColumnConfig{stateConfig})
	return tw.Render()
}

func preflightState(dep api.DependencyStatus) string {
	switch {
	case dep.Available:
		return preflightOK
	case dep.Optional:
		return preflightOptional
	default:
		return preflightMissing
	}
}
