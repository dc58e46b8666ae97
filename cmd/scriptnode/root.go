package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scriptnode",
	Short: "Tooling for Lua-scripted audio/MIDI nodes",
	Long:  `scriptnode validates, inspects and hosts Lua scripts that define the per-block audio/MIDI behavior of a graph node.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
