// Command mftdump locates and parses the Master File Table of an NTFS volume image, printing a
// forensic triage report.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitCodeUserError int = iota + 2
	exitCodeFunctionalError
	exitCodeTechnicalError
)

var verbose bool

func fatalf(exitCode int, format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(exitCode)
}

func printVerbose(format string, v ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, v...)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "mftdump",
		Short: "Parse and triage the Master File Table of an NTFS volume",
		Long:  "mftdump locates an NTFS volume's $MFT from its boot sector and prints a forensic view of its entries",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("mftdump 0.1.0")
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print details about what's going on")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newWalkCmd())
	rootCmd.AddCommand(newPathCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeUserError)
	}
}
