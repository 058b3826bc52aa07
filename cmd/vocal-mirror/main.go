package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "vocal-mirror",
		Short:         "Live vocal practice feedback engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newPracticeCmd())
	root.AddCommand(newAnalyzeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
