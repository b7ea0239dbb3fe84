package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shepheb/asm24/asm"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "asm24 file [file...]",
	Short: "Two-pass assembler for the 24-bit word machine",
	Long: `asm24 assembles one or more source files. Each argument is a base
name: NAME.as is read, the macro-expanded NAME.am is always written, and a
clean run also produces NAME.ob plus NAME.ext and NAME.ent when the file has
external references or entry symbols.

Files are processed independently; errors in one file do not stop the rest.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		invalid := 0
		for _, base := range args {
			ok, err := asm.AssembleFile(base)
			if err != nil {
				// I/O trouble, not a source diagnostic: stop here.
				logrus.Fatalf("%s: %v", base, err)
			}
			if !ok {
				invalid++
			}
		}
		if invalid > 0 {
			logrus.Infof("%d of %d files had errors", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
