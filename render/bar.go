package render

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/viant/rrsim/model"
)

// SliceBar shows the progress of the slice in flight
type SliceBar struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	pid    int
	length int
}

// NewSliceBar creates a bar writing to w
func NewSliceBar(w io.Writer) *SliceBar {
	return &SliceBar{writer: w, pid: -1}
}

// Update advances the bar; a new slice replaces the previous bar
func (b *SliceBar) Update(slice *model.Slice) error {
	if slice == nil {
		return b.Finish()
	}
	if b.bar == nil || slice.PID != b.pid || slice.Length != b.length {
		if err := b.Finish(); err != nil {
			return err
		}
		b.pid = slice.PID
		b.length = slice.Length
		b.bar = progressbar.NewOptions(max(slice.Length, 1),
			progressbar.OptionSetWriter(b.writer),
			progressbar.OptionSetDescription(fmt.Sprintf("pid %d", slice.PID)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "",
				BarEnd:        "",
			}),
		)
	}
	return b.bar.Set(slice.Elapsed)
}

// Finish completes and releases the current bar
func (b *SliceBar) Finish() error {
	if b.bar == nil {
		return nil
	}
	err := b.bar.Finish()
	b.bar = nil
	b.pid = -1
	return err
}

// Current returns the bar state, nil when no slice is shown
func (b *SliceBar) Current() *progressbar.State {
	if b.bar == nil {
		return nil
	}
	state := b.bar.State()
	return &state
}
