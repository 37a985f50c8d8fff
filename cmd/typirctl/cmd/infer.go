package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/typir/internal/demo"
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Trace overload resolution for a few canned '+' calls",
	Long: `Runs three '+' call sites through the demo engine's overload
resolution and prints the per-overload assignability cost and the winner:

  1 + 2          -- exact integer match
  1 + 2.5        -- integer widens to double via an implicit conversion
  "a" + 2        -- rejected, no overload accepts (string, integer)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := buildEngine()

		scenarios := []struct {
			name        string
			left, right demo.Node
		}{
			{"1 + 2", &demo.IntLiteral{Value: 1}, &demo.IntLiteral{Value: 2}},
			{`1 + 2.5`, &demo.IntLiteral{Value: 1}, &demo.FloatLiteral{Value: 2.5}},
			{`"a" + 2`, &demo.StringLiteral{Value: "a"}, &demo.IntLiteral{Value: 2}},
		}

		for _, s := range scenarios {
			fmt.Printf("--- %s ---\n", s.name)
			fmt.Print(engine.TraceBinaryCall("+", s.left, s.right))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inferCmd)
}
