package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the poem",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ctx, flushLog := setupLogger(ctx)
		defer flushLog()

		session, err := newSession(ctx)
		if err != nil {
			return err
		}

		outcome, err := session.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		if outcome.Ignored {
			return nil
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), outcome.Turn.Answer)
		return err
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
