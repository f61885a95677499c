// Package report renders a finished build run for terminal output.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/codeloom/codeloom/internal/workflow"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
)

// Render formats a build report as styled terminal text
func Render(r *workflow.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Build Report"))
	b.WriteString("\n\n")

	writeField(&b, "Project", r.ProjectName)
	writeField(&b, "Plan", r.PlanID)
	writeField(&b, "Branch", r.BranchName)
	writeField(&b, "State", renderState(r.FinalState))
	writeField(&b, "Duration", r.Duration.Round(time.Millisecond).String())

	if r.TasksTotal > 0 {
		tasks := fmt.Sprintf("%d/%d completed", r.TasksCompleted, r.TasksTotal)
		if r.TasksFailed > 0 {
			tasks += warnStyle.Render(fmt.Sprintf(" (%d failed)", r.TasksFailed))
		}
		writeField(&b, "Tasks", tasks)
	}
	if len(r.GeneratedFiles) > 0 {
		writeField(&b, "Files", fmt.Sprintf("%d generated", len(r.GeneratedFiles)))
	}
	if r.CommitID != "" {
		commit := shortCommit(r.CommitID)
		if r.Pushed {
			commit += successStyle.Render(" (pushed)")
		} else {
			commit += labelStyle.Render(" (local)")
		}
		writeField(&b, "Commit", commit)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("Warnings (%d)", len(r.Warnings))))
		b.WriteString("\n")
		for _, warning := range r.Warnings {
			b.WriteString("  " + warnStyle.Render("!") + " " + valueStyle.Render(warning) + "\n")
		}
	}

	if r.FatalError != "" {
		b.WriteString("\n")
		b.WriteString(failStyle.Render("Fatal: ") + valueStyle.Render(r.FatalError))
		b.WriteString("\n")
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label+":")))
	b.WriteString(" " + valueStyle.Render(value) + "\n")
}

func renderState(state workflow.State) string {
	switch state {
	case workflow.StateCompleted:
		return successStyle.Render(string(state))
	case workflow.StateFailed:
		return failStyle.Render(string(state))
	case workflow.StatePaused:
		return warnStyle.Render(string(state))
	default:
		return valueStyle.Render(string(state))
	}
}

func shortCommit(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
