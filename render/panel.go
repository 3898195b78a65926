package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/catalog"
)

const panelWidth = 28

// Header summarises the run state, clock and quantum
func Header(s *model.Snapshot) string {
	state := mutedStyle.Render(string(s.State))
	switch s.State {
	case model.RunStateRunning:
		state = accentStyle.Render(string(s.State))
	case model.RunStateFinished:
		state = successStyle.Render(string(s.State))
	}
	return fmt.Sprintf("%s %s  %s %d  %s %d",
		titleStyle.Render("RR"), state,
		mutedStyle.Render("clock"), s.Clock,
		mutedStyle.Render("quantum"), s.Quantum)
}

// Panels renders the three containers side by side
func Panels(s *model.Snapshot) string {
	var running []string
	if s.Running != nil {
		line := describe(s.Running)
		if s.Slice != nil {
			line += fmt.Sprintf(" [%d/%d]", s.Slice.Elapsed, s.Slice.Length)
		}
		running = append(running, line)
	}
	done := make([]string, 0, len(s.Done))
	for _, p := range s.Done {
		finish := 0
		if p.FinishTime != nil {
			finish = *p.FinishTime
		}
		done = append(done, fmt.Sprintf("%d %s t=%d", p.PID, model.Label(p.Name), finish))
	}
	ready := make([]string, 0, len(s.Ready))
	for _, p := range s.Ready {
		ready = append(ready, describe(p))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		Header(s),
		lipgloss.JoinHorizontal(lipgloss.Top,
			panel("Ready", ready),
			panel("Running", running),
			panel("Done", done),
		),
	)
}

// Catalogs renders the catalog list, marked busy while simulating
func Catalogs(kind catalog.Kind, catalogs []*catalog.Catalog, simulating bool) string {
	title := "Catalogs " + string(kind)
	if simulating {
		title += " (busy)"
	}
	lines := make([]string, 0, len(catalogs))
	for _, item := range catalogs {
		line := fmt.Sprintf("%d %s", item.ID, item.Name)
		if simulating {
			line = mutedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return panel(title, lines)
}

func describe(p *model.Process) string {
	kind := "np"
	if p.Preemptible {
		kind = "p"
	}
	return fmt.Sprintf("%d %s %s %d/%d", p.PID, model.Label(p.Name), kind, p.RemainingService, p.TotalService)
}

func panel(title string, lines []string) string {
	body := mutedStyle.Render("empty")
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	return panelStyle.Width(panelWidth).Render(titleStyle.Render(title) + "\n" + body)
}
