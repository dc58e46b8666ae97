package main

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed luaapi.md
var luaAPIReference string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the Lua scripting API reference",
	Run: func(cmd *cobra.Command, args []string) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			fmt.Print(luaAPIReference)
			return
		}
		out, err := r.Render(luaAPIReference)
		if err != nil {
			fmt.Print(luaAPIReference)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
