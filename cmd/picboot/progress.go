package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/moffa90/go-picboot/bootloader"
)

// progressReporter renders session progress as one bar per phase.
type progressReporter struct {
	out   io.Writer
	bar   *progressbar.ProgressBar
	phase bootloader.State
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out, phase: bootloader.StateIdle}
}

func (r *progressReporter) update(p bootloader.Progress) {
	if p.Phase.Terminal() {
		r.close()
		return
	}
	if p.TotalBytes == 0 {
		return
	}
	if r.bar == nil || r.phase != p.Phase {
		r.start(p.Phase, p.TotalBytes)
	}
	_ = r.bar.Set(p.BytesTransferred)
}

func (r *progressReporter) start(phase bootloader.State, total int) {
	r.close()

	desc := "Writing  "
	if phase == bootloader.StateVerifying {
		desc = "Verifying"
	}
	r.phase = phase
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowBytes(true),
	)
}

func (r *progressReporter) close() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	_, _ = io.WriteString(r.out, "\n")
	r.bar = nil
}
