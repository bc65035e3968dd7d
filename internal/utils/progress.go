package utils

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Bar descriptions
const (
	DescSyncing   = "Syncing"
	DescExporting = "Exporting"
)

// newProgressBar builds a bar with a count; a negative total renders a spinner
func newProgressBar(total int, description string, extra ...progressbar.Option) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, append(opts, extra...)...)
}

// Progress renders (completed, total) reports on a bar that is created
// lazily when the first report arrives and recreated when total changes
type Progress struct {
	mu     sync.Mutex
	out    io.Writer
	desc   string
	bar    *progressbar.ProgressBar
	total  int
	latest int
}

// NewProgress creates a Progress labelled desc writing to out (stderr when nil)
func NewProgress(out io.Writer, desc string) *Progress {
	return &Progress{out: out, desc: desc}
}

// Report matches the controller and exporter progress callbacks
func (p *Progress) Report(completed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil || total != p.total {
		var extra []progressbar.Option
		if p.out != nil {
			extra = append(extra, progressbar.OptionSetWriter(p.out))
		}
		p.bar = newProgressBar(total, p.desc, extra...)
		p.total = total
	}
	p.latest = completed
	_ = p.bar.Set(completed)
	if completed == total {
		_ = p.bar.Finish()
	}
}

// Completed returns the last reported completed count
func (p *Progress) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}
