package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/soundloom/scriptnode/pkg/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script.lua>",
	Short: "Dry-run a script's full lifecycle",
	Long:  `Loads the script into a throwaway interpreter, derives its ports, and runs prepare, one render against dummy buffers, and release. Nothing reaches a live audio path.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := termenv.ColorProfile()
		text, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println(termenv.String("cannot read script: " + err.Error()).Foreground(p.Color("1")))
			os.Exit(1)
		}
		if err := script.Validate(string(text)); err != nil {
			fmt.Println(termenv.String("script rejected").Foreground(p.Color("1")).Bold())
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(termenv.String("script accepted").Foreground(p.Color("2")).Bold())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
