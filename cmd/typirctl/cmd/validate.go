package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/typir/internal/demo"
	"github.com/cwbudde/typir/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the demo engine's validation collector over two record literals",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := buildEngine()

		nodes := []demo.Node{
			&demo.RecordLiteral{TypeName: "Point", Fields: map[string]demo.Node{
				"x": &demo.IntLiteral{Value: 1},
				"y": &demo.IntLiteral{Value: 2},
			}},
			&demo.RecordLiteral{TypeName: "Point", Fields: map[string]demo.Node{
				"x": &demo.IntLiteral{Value: 1},
				"z": &demo.IntLiteral{Value: 3},
			}},
		}

		problems := engine.Validate(context.Background(), nodes)
		if len(problems) == 0 {
			fmt.Println("no problems found")
			return nil
		}
		fmt.Print(validation.Render(problems))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
