package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-picboot/ihex"
)

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge OUT.hex IN.hex [IN.hex...]",
		Short: "Combine HEX files; later files win where they overlap",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.merge(args[0], args[1:]); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}
}

func (a *app) merge(out string, inputs []string) error {
	merged := ihex.New()
	for _, path := range inputs {
		img, err := ihex.LoadFS(a.fs, path, a.profile.EnforceChecksum)
		if err != nil {
			return err
		}
		for _, w := range img.Warnings() {
			a.logger.Warn().Str("file", path).Msg(w)
		}
		for _, w := range merged.Merge(img) {
			a.logger.Warn().Str("file", path).Msg(w)
		}
	}

	var buf bytes.Buffer
	if err := merged.WriteHex(&buf); err != nil {
		return err
	}
	if err := afero.WriteFile(a.fs, out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	_, _ = fmt.Fprintf(a.stdout, "merged %d files into %s (%d bytes)\n", len(inputs), out, merged.Len())
	return nil
}
