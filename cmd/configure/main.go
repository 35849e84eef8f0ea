package main

import (
	"fmt"
	"os"

	"github.com/granjaops/taskward/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskward-admin",
		Short: "Administer taskward scheduling configuration",
		Long:  "Manage feed configurations, task templates and stored tasks for the taskward reconciliation service.",
	}

	rootCmd.AddCommand(commands.NewFeedConfigCmd())
	rootCmd.AddCommand(commands.NewTemplatesCmd())
	rootCmd.AddCommand(commands.NewMaintenanceCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
