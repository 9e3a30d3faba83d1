package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"latex-speech/internal/analysis"
	"latex-speech/internal/engine"
	"latex-speech/internal/types"
	"latex-speech/internal/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check <expression>",
	Short: "Validate a LaTeX expression and report its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr, err := validator.Validate(args[0], cfg.Limits)
		if err != nil {
			var verr *types.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(os.Stderr, "invalid: [%s] %s\n", verr.Code, verr.Message)
				if verr.Snippet != "" {
					fmt.Fprintf(os.Stderr, "  near: %s (offset %d)\n", verr.Snippet, verr.Offset)
				}
				os.Exit(1)
			}
			return err
		}

		fmt.Println("valid")
		fmt.Printf("  domain:     %s\n", analysis.DetectDomain(expr))
		fmt.Printf("  context:    %s\n", engine.DetectContext(expr))
		fmt.Printf("  complexity: %.2f\n", expr.Complexity())
		fmt.Printf("  depth:      %d\n", expr.MaxNestingDepth())
		if commands := expr.Commands(); len(commands) > 0 {
			fmt.Printf("  commands:   %s\n", strings.Join(commands, ", "))
		}
		if variables := expr.Variables(); len(variables) > 0 {
			fmt.Printf("  variables:  %s\n", strings.Join(variables, ", "))
		}
		return nil
	},
}
