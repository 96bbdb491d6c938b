package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ufolux/TransPop/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported language codes and providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", language.AutoDetect, "Detect language")
			for _, option := range language.Options() {
				fmt.Fprintf(w, "%s\t%s\n", option.Code, option.Label)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())
			for _, kind := range language.ProviderKinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "provider: %s\n", kind)
			}
			return nil
		},
	}
}
