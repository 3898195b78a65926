package model

import "unicode/utf8"

const (
	labelLimit    = 12
	labelEllipsis = "…"
)

// TurnaroundEntry is a single chart bar: how many slices a finished record
// consumed.
type TurnaroundEntry struct {
	PID        int
	Name       string
	Label      string
	Executions int
	FinishTime int
}

// Turnaround builds chart entries for done records in completion order
func Turnaround(done []*Process) []*TurnaroundEntry {
	ret := make([]*TurnaroundEntry, 0, len(done))
	for _, p := range done {
		entry := &TurnaroundEntry{
			PID:        p.PID,
			Name:       p.Name,
			Label:      Label(p.Name),
			Executions: p.ServiceCount,
		}
		if p.FinishTime != nil {
			entry.FinishTime = *p.FinishTime
		}
		ret = append(ret, entry)
	}
	return ret
}

// Label truncates a name to the chart label width
func Label(name string) string {
	if utf8.RuneCountInString(name) <= labelLimit {
		return name
	}
	runes := []rune(name)
	return string(runes[:labelLimit]) + labelEllipsis
}
