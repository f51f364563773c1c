package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dfirtools/gomft/prettyprint"
)

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <volume> <record>",
		Short: "Resolve a record number's full path",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			m, _, err := locateMFT(args[0])
			if err != nil {
				fatalf(exitCodeTechnicalError, "%v\n", err)
			}

			record, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				fatalf(exitCodeUserError, "invalid record number %q: %v\n", args[1], err)
			}

			isOrphan, path, err := m.GetFullPath(record)
			if err != nil {
				fatalf(exitCodeFunctionalError, "unable to resolve path for entry %d: %v\n", record, err)
			}
			fmt.Println(prettyprint.Path(record, isOrphan, path))
		},
	}
}
