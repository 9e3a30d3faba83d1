package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"latex-speech/internal/pattern"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and lint pronunciation patterns",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the patterns the configured store would serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		patterns, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		all, err := patterns.FindByFilters(ctx, pattern.Filters{})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDOMAIN\tPRIORITY\tTIER\tMATCHER")
		for _, p := range all {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				p.ID(), p.Domain(), p.Priority(), p.Tier(), p.Matcher())
		}
		return w.Flush()
	},
}

var patternsLintCmd = &cobra.Command{
	Use:   "lint <file>...",
	Short: "Check pattern files and report every malformed definition",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		broken := 0
		for _, path := range args {
			valid, issues, err := pattern.Lint(path)
			if err != nil {
				return err
			}
			for _, issue := range issues {
				broken++
				fmt.Printf("%s: %s: %v\n", path, issue.PatternID, issue.Err)
			}
			fmt.Printf("%s: %d valid, %d broken\n", path, len(valid), len(issues))
		}
		if broken > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsLintCmd)
}
