package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"latex-speech/internal/cache"
	"latex-speech/internal/engine"
	"latex-speech/internal/types"
	"latex-speech/internal/validator"
)

var (
	speakAudience string
	speakDomain   string
	speakJSON     bool
	speakNoCache  bool

	speakCmd = &cobra.Command{
		Use:   "speak <expression>",
		Short: "Rewrite a LaTeX expression into speech text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			audience := cfg.DefaultAudience
			if speakAudience != "" {
				audience = types.AudienceLevel(speakAudience)
				if !audience.Valid() {
					return types.NewAppErrorWithDetails(types.ErrConfig,
						"unknown audience level", speakAudience, nil)
				}
			}
			domain := types.Domain(speakDomain)
			if speakDomain != "" && !domain.Valid() {
				return types.NewAppErrorWithDetails(types.ErrConfig,
					"unknown domain", speakDomain, nil)
			}

			expr, err := validator.Validate(args[0], cfg.Limits)
			if err != nil {
				return err
			}

			var results cache.Cache
			if !speakNoCache {
				c, closeCache, err := openCache(ctx)
				if err != nil {
					return err
				}
				defer closeCache()
				results = c
			}

			key := cache.Key(expr.Content(), audience, domain)
			if results != nil {
				if cached, ok, err := results.Get(ctx, key); err == nil && ok {
					return printSpeech(cached)
				}
			}

			patterns, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := engine.New(patterns, cfg.MaxIterations).
				Process(ctx, expr, audience, domain)
			if err != nil {
				return err
			}

			if results != nil {
				// A failed cache write only costs the next call a rewrite.
				_ = results.Set(ctx, key, result)
			}
			return printSpeech(result)
		},
	}
)

func init() {
	speakCmd.Flags().StringVarP(&speakAudience, "audience", "a", "",
		"audience level (elementary, high_school, undergraduate, graduate, research)")
	speakCmd.Flags().StringVarP(&speakDomain, "domain", "d", "",
		"mathematical domain hint; detected from the expression when omitted")
	speakCmd.Flags().BoolVar(&speakJSON, "json", false, "emit the full result as JSON")
	speakCmd.Flags().BoolVar(&speakNoCache, "no-cache", false, "bypass the result cache")
}

func printSpeech(result *types.SpeechText) error {
	if speakJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Text)
	if !result.Converged {
		fmt.Fprintf(os.Stderr, "warning: rewrite did not converge after %d iterations\n",
			result.IterationsUsed)
	}
	for id, n := range result.ErrorTally {
		fmt.Fprintf(os.Stderr, "warning: pattern %s failed %d time(s)\n", id, n)
	}
	return nil
}
