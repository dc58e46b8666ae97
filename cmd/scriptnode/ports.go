package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soundloom/scriptnode/pkg/port"
	"github.com/soundloom/scriptnode/pkg/script"
)

var portsCmd = &cobra.Command{
	Use:   "ports <script.lua>",
	Short: "Print the port list a script declares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		ctx := script.NewContext()
		defer ctx.Close()
		if err := ctx.Load(string(text)); err != nil {
			return fmt.Errorf("load: %w", err)
		}

		var ports port.List
		if err := ctx.CreatePorts(&ports); err != nil {
			return fmt.Errorf("derive ports: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tTYPE\tDIR\tCHANNEL\tSYMBOL\tNAME")
		for _, p := range ports {
			dir := "out"
			if p.IsInput {
				dir = "in"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", p.Index, p.Type, dir, p.Channel, p.Symbol, p.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
