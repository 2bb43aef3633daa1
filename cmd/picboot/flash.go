package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-picboot/bootloader"
	"github.com/moffa90/go-picboot/ihex"
	"github.com/moffa90/go-picboot/internal/logging"
	"github.com/moffa90/go-picboot/protocol"
	"github.com/moffa90/go-picboot/serialport"
	"github.com/moffa90/go-picboot/simulator"
)

type flashOptions struct {
	port        string
	simulate    bool
	idleTimeout time.Duration
	quiet       bool
}

func newFlashCmd(a *app) *cobra.Command {
	opts := &flashOptions{}

	cmd := &cobra.Command{
		Use:   "flash FILE.hex",
		Short: "Download a HEX file to the device and verify it",
		Long: `Loads FILE.hex, crops it to the application area of the profile,
fills unused words, then runs the handshake, erase, page writes and
read-back verification. Reset the device into its bootloader first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.flash(cmd, args[0], opts); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "serial port of the bootloader")
	cmd.Flags().BoolVar(&opts.simulate, "simulate", false, "flash a simulated device instead of a serial port")
	cmd.Flags().DurationVar(&opts.idleTimeout, "idle-timeout", 3*time.Second, "abort verification when the read-out stalls this long (0 waits forever)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func (a *app) flash(cmd *cobra.Command, path string, opts *flashOptions) error {
	if !opts.simulate && opts.port == "" {
		return errors.New("--port is required unless --simulate is set")
	}

	img, err := ihex.LoadFS(a.fs, path, a.profile.EnforceChecksum)
	if err != nil {
		return err
	}
	for _, w := range img.Warnings() {
		a.logger.Warn().Str("file", path).Msg(w)
	}
	for _, w := range a.profile.Prepare(img) {
		a.logger.Warn().Str("file", path).Msg(w)
	}

	var stream protocol.Stream
	var device *simulator.Device
	if opts.simulate {
		device = simulator.New(a.profile.SimulatorOptions()...)
		stream = device
	} else {
		s, err := serialport.Open(opts.port, a.profile.SerialConfig())
		if err != nil {
			return err
		}
		stream = s
	}
	defer func() {
		if err := stream.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close stream")
		}
	}()

	sessOpts := append(a.profile.SessionOptions(),
		bootloader.WithLogger(logging.NewAdapter(a.logger)),
		bootloader.WithVerifyIdleTimeout(opts.idleTimeout),
	)
	var bar *progressReporter
	if !opts.quiet {
		bar = newProgressReporter(a.stderr)
		sessOpts = append(sessOpts, bootloader.WithProgressCallback(bar.update))
	}

	start := time.Now()
	sess := bootloader.New(stream, sessOpts...)
	err = sess.Download(cmd.Context(), img)
	if bar != nil {
		bar.close()
	}

	if err != nil {
		var mismatch *bootloader.VerifyMismatchError
		if errors.As(err, &mismatch) {
			a.logger.Error().
				Str("address", fmt.Sprintf("0x%04X", mismatch.Address)).
				Str("word", fmt.Sprintf("0x%04X", mismatch.WordAddress())).
				Msg("flash contents differ from image")
		}
		if errors.Is(err, bootloader.ErrNotAcknowledged) {
			return fmt.Errorf("%w: is the device in its bootloader?", err)
		}
		return fmt.Errorf("flash %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(a.stdout, "flashed %s (%d bytes, 0x%04X-0x%04X) in %s\n",
		path, img.Len(), a.profile.AppStart, a.profile.AppEnd-1,
		time.Since(start).Round(time.Millisecond))
	if device != nil {
		_, _ = fmt.Fprintf(a.stdout, "simulated device programmed %d pages\n", device.PagesWritten())
	}
	return nil
}
