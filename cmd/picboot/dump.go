package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-picboot/ihex"
)

type dumpOptions struct {
	format string
	out    string
	raw    bool
	fill   uint8
}

func newDumpCmd(a *app) *cobra.Command {
	opts := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump FILE.hex",
		Short: "Export a HEX file as binary, Intel HEX or an address listing",
		Long: `Exports the image as it would be downloaded: cropped to the application
area and filled with the profile's fill word. Use --raw to export the file
contents unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.dump(args[0], opts); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "hex", "output format: bin, hex, columns")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "skip cropping and filling")
	cmd.Flags().Uint8Var(&opts.fill, "fill", 0xFF, "byte used for gaps in --raw binary output")
	return cmd
}

func (a *app) dump(path string, opts *dumpOptions) error {
	img, err := ihex.LoadFS(a.fs, path, a.profile.EnforceChecksum)
	if err != nil {
		return err
	}

	start, end := a.profile.AppStart, a.profile.AppEnd
	if opts.raw {
		low, high, err := img.Bounds()
		if err != nil {
			return err
		}
		start, end = low, high+1
	} else {
		for _, w := range a.profile.Prepare(img) {
			a.logger.Warn().Str("file", path).Msg(w)
		}
	}

	var buf bytes.Buffer
	switch opts.format {
	case "bin":
		err = img.WriteBinary(&buf, start, end, opts.fill)
	case "hex":
		err = img.WriteHex(&buf)
	case "columns":
		err = img.WriteTwoColumn(&buf)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if err != nil {
		return err
	}

	if opts.out == "" {
		_, err = io.Copy(a.stdout, &buf)
		return err
	}
	if err := afero.WriteFile(a.fs, opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	a.logger.Info().Str("file", opts.out).Int("bytes", buf.Len()).Msg("image exported")
	return nil
}
