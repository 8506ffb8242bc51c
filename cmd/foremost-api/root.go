package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use: "foremost-api",
}

func init() {
	rootCmd.AddCommand(runCmd)
}
