package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "docscan",
		Short: "Sanitize and analyze documents from the command line",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	root.AddCommand(sanitizeCmd(&configPath))
	root.AddCommand(analyzeCmd(&configPath))
	root.AddCommand(historyCmd(&configPath))
	root.AddCommand(sweepCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
