package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ufolux/TransPop/internal/cli"
	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/orchestrator"
)

// watch reads one edit per stdin line. Lines starting with ":" are commands:
// ":swap", ":from <code>", ":to <code>" and ":provider <name>".
func newWatchCmd(envLoader *cli.EnvLoader) *cobra.Command {
	var (
		provider string
		from     string
		to       string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Translate stdin lines as successive edits with debouncing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debounce < 0 {
				return usageErrorf("--debounce must be >= 0")
			}

			rt, err := bootstrap(envLoader, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			initial, err := rt.selection(provider, from, to)
			if err != nil {
				return err
			}

			editor := rt.newOrchestrator(initial, debounce)
			defer editor.Close()

			return watch(cmd.Context(), editor, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Translation provider (bing, google, openai)")
	cmd.Flags().StringVar(&from, "from", "", "Source language code, or auto")
	cmd.Flags().StringVar(&to, "to", "", "Target language code")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before translating (default from TRANSLATION_DEBOUNCE)")
	return cmd
}

func watch(ctx context.Context, editor *orchestrator.Orchestrator, in io.Reader, out io.Writer) error {
	updates, unsubscribe := editor.Subscribe()
	defer unsubscribe()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var printed orchestrator.State
	emit := func(state orchestrator.State) {
		if state == printed || state.Phase == orchestrator.PhaseIdle {
			return
		}
		printed = state
		fmt.Fprintln(out, formatState(state))
	}

	inputDone := false
	for {
		if inputDone && editor.Snapshot().Phase != orchestrator.PhasePending {
			select {
			case state, ok := <-updates:
				if ok {
					emit(state)
				}
			default:
			}
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				inputDone = true
				lines = nil
				continue
			}
			if err := applyWatchLine(editor, line); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			emit(state)
		}
	}
}

func applyWatchLine(editor *orchestrator.Orchestrator, line string) error {
	if !strings.HasPrefix(line, ":") {
		editor.SetText(line)
		return nil
	}

	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return fmt.Errorf("empty command")
	}
	switch fields[0] {
	case "swap":
		editor.Swap()
	case "from":
		if len(fields) != 2 || language.Canonical(fields[1]) == "" {
			return fmt.Errorf(":from takes one language code")
		}
		editor.SetSourceLang(language.Canonical(fields[1]))
	case "to":
		if len(fields) != 2 {
			return fmt.Errorf(":to takes one concrete language code")
		}
		code := language.Canonical(fields[1])
		if code == "" || code == language.AutoDetect {
			return fmt.Errorf(":to takes one concrete language code")
		}
		editor.SetTargetLang(code)
	case "provider":
		if len(fields) != 2 {
			return fmt.Errorf(":provider takes one provider name")
		}
		kind, ok := language.ParseProviderKind(fields[1])
		if !ok {
			return fmt.Errorf("unknown provider %q", fields[1])
		}
		editor.SetProvider(kind)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func formatState(state orchestrator.State) string {
	switch state.Phase {
	case orchestrator.PhasePending:
		return fmt.Sprintf("[pending #%d]", state.Generation)
	case orchestrator.PhaseSuccess:
		return fmt.Sprintf("[success #%d] (%s) %s", state.Generation, state.DetectedSourceLang, state.ResultText)
	case orchestrator.PhaseFailed:
		return fmt.Sprintf("[failed #%d] %s", state.Generation, state.ErrorMessage)
	default:
		return fmt.Sprintf("[%s]", state.Phase)
	}
}
