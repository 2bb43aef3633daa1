package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-picboot/ihex"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE.hex",
		Short: "Describe the contents of a HEX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.info(args[0]); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}
}

func (a *app) info(path string) error {
	img, err := ihex.LoadFS(a.fs, path, a.profile.EnforceChecksum)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	row := func(k, v string) { _, _ = fmt.Fprintf(tw, "%s\t%s\n", k, v) }

	row("file:", path)
	row("bytes:", fmt.Sprintf("%d", img.Len()))

	low, high, err := img.Bounds()
	switch {
	case errors.Is(err, ihex.ErrEmptyImage):
		row("range:", "empty")
	case err != nil:
		return err
	default:
		row("range:", fmt.Sprintf("0x%04X-0x%04X", low, high))
	}

	for i, seg := range img.Segments() {
		label := ""
		if i == 0 {
			label = "segments:"
		}
		end := uint64(seg.Address) + uint64(len(seg.Data)) - 1
		row(label, fmt.Sprintf("0x%04X-0x%04X (%d bytes)", seg.Address, end, len(seg.Data)))
	}

	prepared := img.Clone()
	notes := a.profile.Prepare(prepared)
	pages := prepared.Len() / a.profile.PageSize
	row("profile:", fmt.Sprintf("%s, application 0x%04X-0x%04X, %d pages",
		a.profile.Name, a.profile.AppStart, a.profile.AppEnd-1, pages))

	writeList(tw, "warnings:", append(img.Warnings(), notes...))
	return tw.Flush()
}

func writeList(w io.Writer, label string, items []string) {
	for i, item := range items {
		if i > 0 {
			label = ""
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", label, item)
	}
}
