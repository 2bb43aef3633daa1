package main

import (
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the active device profile as TOML",
		Long: `Prints the profile selected with --profile, or the built-in PIC16F15214
profile. Save the output, edit it and pass it back with --profile to target
another layout.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.profile.Encode(a.stdout); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}
}
