// Command bevisched is a small demonstration CLI for the scheduler: it
// builds a fixed demo schedule and either prints its computed batch/
// stage plan (describe) or drives it for a bounded number of ticks (run).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "bevisched",
		Short: "Inspect and run bevi demo schedules",
		Long:  "bevisched builds a fixed demo schedule and either prints its computed stage plan or drives it for a bounded number of ticks.",
	}
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
