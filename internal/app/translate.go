package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ufolux/TransPop/internal/cli"
	"github.com/ufolux/TransPop/internal/translation"
)

type translateOutput struct {
	Text               string                   `json:"text"`
	DetectedSourceLang string                   `json:"detected_source_lang"`
	SourceLang         string                   `json:"source_lang"`
	TargetLang         string                   `json:"target_lang"`
	Provider           translation.ProviderKind `json:"provider"`
}

func newTranslateCmd(envLoader *cli.EnvLoader) *cobra.Command {
	var (
		provider string
		from     string
		to       string
		timeout  time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "translate [flags] <text...>",
		Short: "Translate text once and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return usageErrorf("translate text must not be empty")
			}
			if timeout <= 0 {
				return usageErrorf("--timeout must be > 0")
			}

			rt, err := bootstrap(envLoader, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			in, err := rt.selection(provider, from, to)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			req := translation.Request{
				Text:       text,
				SourceLang: in.SourceLang,
				TargetLang: in.TargetLang,
				Provider:   in.Provider,
			}
			result, err := rt.gateway.Translate(ctx, req)
			if err != nil {
				return fmt.Errorf("translate failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(translateOutput{
					Text:               result.Text,
					DetectedSourceLang: result.DetectedSourceLang,
					SourceLang:         req.SourceLang,
					TargetLang:         req.TargetLang,
					Provider:           req.Provider,
				})
			}

			fmt.Fprintln(out, result.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "provider=%s from=%s detected=%s to=%s\n",
				req.Provider, req.SourceLang, result.DetectedSourceLang, req.TargetLang)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Translation provider (bing, google, openai)")
	cmd.Flags().StringVar(&from, "from", "", "Source language code, or auto")
	cmd.Flags().StringVar(&to, "to", "", "Target language code")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Command timeout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
