package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-picboot/internal/logging"
	"github.com/moffa90/go-picboot/profile"
)

// app holds state shared by every subcommand.
type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	profilePath string
	logLevel    string
	logFile     string
	noColor     bool

	profile profile.Profile
	logger  zerolog.Logger
}

func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	a := &app{fs: fs, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "picboot",
		Short:         "Flash PIC16F15214 firmware through the serial bootloader",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.profilePath, "profile", "", "device profile TOML file (default PIC16F15214)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFile, "log-file", "", "also write logs to this rotated file")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored log output")

	root.AddCommand(
		newFlashCmd(a),
		newInfoCmd(a),
		newDumpCmd(a),
		newMergeCmd(a),
		newPortsCmd(a),
		newProfileCmd(a),
	)
	return root
}

func (a *app) setup() error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return a.fail(err)
	}

	a.logger, err = logging.Setup(logging.Options{
		Level:   level,
		File:    a.logFile,
		Console: a.stderr,
		NoColor: a.noColor,
	})
	if err != nil {
		return a.fail(err)
	}

	a.profile = profile.Default()
	if a.profilePath != "" {
		p, err := profile.LoadFile(a.fs, a.profilePath)
		if err != nil {
			return a.fail(err)
		}
		a.profile = p
	}
	a.logger.Debug().Str("profile", a.profile.Name).Msg("profile loaded")
	return nil
}

// fail reports err on stderr and returns it so cobra exits non-zero.
func (a *app) fail(err error) error {
	_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
	return err
}
