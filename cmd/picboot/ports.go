package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-picboot/serialport"
)

// listPorts is replaced in tests.
var listPorts = serialport.ListPorts

func newPortsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ports, err := listPorts()
			if err != nil {
				return a.fail(err)
			}
			if len(ports) == 0 {
				_, _ = fmt.Fprintln(a.stdout, "no serial ports found")
				return nil
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			for _, p := range ports {
				if p.IsUSB {
					_, _ = fmt.Fprintf(tw, "%s\tUSB %s:%s\t%s\t%s\n", p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
				} else {
					_, _ = fmt.Fprintf(tw, "%s\t\t\t\n", p.Name)
				}
			}
			return tw.Flush()
		},
	}
}
