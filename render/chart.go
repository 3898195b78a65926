package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/viant/rrsim/model"
)

// Chart renders a horizontal bar per finished record in completion order;
// bar length is proportional to the number of slices consumed.
func Chart(entries []*model.TurnaroundEntry, width int) string {
	if len(entries) == 0 {
		return mutedStyle.Render("no finished processes")
	}
	if width < 1 {
		width = 1
	}
	maxExecutions := 0
	labelWidth := 0
	for _, entry := range entries {
		maxExecutions = max(maxExecutions, entry.Executions)
		labelWidth = max(labelWidth, utf8.RuneCountInString(entry.Label))
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Turnaround (executions)"))
	for _, entry := range entries {
		length := 0
		if maxExecutions > 0 {
			length = entry.Executions * width / maxExecutions
		}
		if entry.Executions > 0 && length == 0 {
			length = 1
		}
		padding := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(entry.Label))
		fmt.Fprintf(&b, "\n%s%s %s %d", entry.Label, padding, successStyle.Render(strings.Repeat("█", length)), entry.Executions)
	}
	return b.String()
}
