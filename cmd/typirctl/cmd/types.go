package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List every type registered in the demo engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := buildEngine()
		for _, line := range engine.ListTypes() {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
