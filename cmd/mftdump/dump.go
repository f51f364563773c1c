package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dfirtools/gomft/prettyprint"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <volume> [record]",
		Short: "Print a triage report for one entry, or every entry",
		Long:  "Dump prints a pretty-printed report for a single record number, or for every base entry in the MFT when no record number is given.",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			m, _, err := locateMFT(args[0])
			if err != nil {
				fatalf(exitCodeTechnicalError, "%v\n", err)
			}

			if len(args) == 2 {
				record, err := strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					fatalf(exitCodeUserError, "invalid record number %q: %v\n", args[1], err)
				}
				entry, err := m.Get(record)
				if err != nil {
					fatalf(exitCodeFunctionalError, "unable to get entry %d: %v\n", record, err)
				}
				fmt.Println(prettyprint.Entry(record, entry))
				return
			}

			records, err := m.Iterate()
			if err != nil {
				fatalf(exitCodeFunctionalError, "unable to iterate entries: %v\n", err)
			}
			for _, record := range records {
				entry, err := m.Get(record)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "entry %d: %v\n", record, err)
					continue
				}
				fmt.Println(prettyprint.Entry(record, entry))
			}
		},
	}
}
