package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfirtools/gomft/mft"
)

func newWalkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "walk <volume>",
		Short: "Iterate every base entry and report summary counts",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			m, _, err := locateMFT(args[0])
			if err != nil {
				fatalf(exitCodeTechnicalError, "%v\n", err)
			}

			records, err := m.Iterate()
			if err != nil {
				fatalf(exitCodeFunctionalError, "unable to iterate entries: %v\n", err)
			}

			var directories, files, withWarnings int
			for _, record := range records {
				entry, err := m.Get(record)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "entry %d: %v\n", record, err)
					continue
				}
				if entry.Header.Flags.Is(mft.RecordFlagIsDirectory) {
					directories++
				} else {
					files++
				}
				if len(entry.Warnings) > 0 {
					withWarnings++
				}
			}

			fmt.Printf("entries: %d (directories: %d, files: %d)\n", len(records), directories, files)
			fmt.Printf("entries with warnings: %d\n", withWarnings)
		},
	}
}
